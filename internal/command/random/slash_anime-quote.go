package random

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
)

const (
	quoteColor = 0xff6bc9
	maxQuotes  = 5
)

type QuoteSource interface {
	RandomQuotes(ctx context.Context) ([]nvapi.AnimeQuote, error)
}

// NewAnimeQuote builds /anime-quote. pick chooses an index in [0, n); nil
// means math/rand.
func NewAnimeQuote(api QuoteSource, pick func(n int) int, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("anime-quote: client is required")
	}
	if pick == nil {
		pick = rand.IntN
	}
	return cmd.Definition{
		Name:        "anime-quote",
		Description: "Get random anime quotes",
		Options: []cmd.Option{{
			Name:        "count",
			Description: "Number of quotes (1-5)",
			Type:        cmd.OptionInteger,
			MinValue:    cmd.Limit(1),
			MaxValue:    cmd.Limit(maxQuotes),
		}},
		Cooldown: 3 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			count := min(max(inv.Params.Int("count", 1), 1), maxQuotes)
			if err := inv.Reply.Acknowledge(ctx, false); err != nil {
				return err
			}

			quotes, err := api.RandomQuotes(ctx)
			switch {
			case errors.Is(err, nvapi.ErrNoResult):
				return respond.Fail(ctx, inv.Reply, "❌ No quotes available.")
			case err != nil:
				log.Error().Err(err).Msg("Failed to fetch quotes")
				return respond.Fail(ctx, inv.Reply, "❌ Failed to fetch quotes. Please try again.")
			}

			em := cmd.Embed{
				Title:       fmt.Sprintf("🌸 %d Random Anime Quotes", count),
				Description: "Here are some random anime quotes for you:",
				Color:       quoteColor,
				Footer:      "Powered by NvLabs",
				Timestamp:   true,
			}
			for i := range count {
				q := quotes[pick(len(quotes))]
				value := `"` + q.Quote + `"`
				if q.Episode != "" {
					value += "\n📺 Episode: " + q.Episode
				}
				em.Fields = append(em.Fields, cmd.EmbedField{
					Name:  respond.Truncate(fmt.Sprintf("#%d - %s (%s)", i+1, q.Character, q.Anime), 256),
					Value: respond.Truncate(value, respond.MaxFieldValue),
				})
			}

			if err := respond.Embed(ctx, inv.Reply, em); err != nil {
				return err
			}
			log.Info().Msgf("Sent %d anime quotes", count)
			return nil
		},
	}, nil
}
