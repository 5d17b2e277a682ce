package ai

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
)

const claudeColor = 0x10b981

type Asker interface {
	Claude(ctx context.Context, msg string) (*nvapi.ClaudeReply, error)
}

// NewClaude builds /claude, a single-turn chat with Claude through NvLabs.
func NewClaude(api Asker, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("claude: client is required")
	}
	return cmd.Definition{
		Name:        "claude",
		Description: "Chat with Claude AI",
		Options: []cmd.Option{
			{Name: "msg", Description: "Your message to Claude", Type: cmd.OptionString, Required: true, MaxLength: 1000},
		},
		Cooldown: 8 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			msg := inv.Params.String("msg", "")
			if err := inv.Reply.Acknowledge(ctx, false); err != nil {
				return err
			}
			log.Info().Msgf("Claude request: %q", respond.Truncate(msg, 100))

			reply, err := api.Claude(ctx, msg)
			switch {
			case errors.Is(err, nvapi.ErrNoResult):
				return respond.Fail(ctx, inv.Reply, "❌ Claude AI did not respond.")
			case err != nil:
				log.Error().Err(err).Msg("Claude error")
				return respond.Fail(ctx, inv.Reply, "❌ Failed to reach Claude AI. Please try again later.")
			}

			return inv.Reply.EditReply(ctx, &cmd.Response{
				Content: respond.Truncate("**💬 Your message:** "+msg, respond.MaxContent),
				Embeds: []cmd.Embed{{
					Title:       "🤖 Claude AI Response",
					Description: respond.Truncate(reply.Response, respond.MaxDescription),
					Color:       claudeColor,
					Fields: []cmd.EmbedField{
						{Name: "🔢 Tokens", Value: strconv.Itoa(reply.EstimatedTokens), Inline: true},
						{Name: "📏 Length", Value: strconv.Itoa(reply.ResponseLength) + " chars", Inline: true},
					},
					Footer:     "Requested by " + inv.Principal.Username,
					FooterIcon: respond.FooterIcon,
					Timestamp:  true,
				}},
			})
		},
	}, nil
}
