package fun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
)

const (
	memeColor        = 0xff4500
	defaultSubreddit = "memes"
)

type MemeSource interface {
	RedditMeme(ctx context.Context, subreddit string) (*nvapi.Meme, error)
}

func NewMeme(api MemeSource, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("meme: client is required")
	}
	return cmd.Definition{
		Name:        "meme",
		Description: "Get a random meme from Reddit",
		Options: []cmd.Option{{
			Name:        "subreddit",
			Description: "Subreddit to get meme from",
			Type:        cmd.OptionString,
			Choices: []cmd.Choice{
				{Name: "Programmer Humor", Value: "ProgrammerHumor"},
				{Name: "Memes", Value: "memes"},
				{Name: "Dank Memes", Value: "dankmemes"},
			},
		}},
		Cooldown: 10 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			sub := inv.Params.String("subreddit", defaultSubreddit)
			if err := inv.Reply.Acknowledge(ctx, false); err != nil {
				return err
			}

			m, err := api.RedditMeme(ctx, sub)
			if err != nil {
				log.Error().Err(err).Str("subreddit", sub).Msg("Failed to fetch meme")
				return respond.Fail(ctx, inv.Reply, "❌ Failed to fetch meme. Please try again later.")
			}

			return respond.Embed(ctx, inv.Reply, cmd.Embed{
				Title:     respond.Truncate(m.Title, 256),
				URL:       m.Permalink,
				Color:     memeColor,
				Image:     m.ImageURL,
				Footer:    fmt.Sprintf("👍 %d | 💬 %d | r/%s", m.Ups, m.Comments, m.Subreddit),
				Timestamp: true,
			})
		},
	}, nil
}
