package fun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
)

type MemeRenderer interface {
	Ustadz(ctx context.Context, text string) (*nvapi.UstadzMeme, error)
	Download(ctx context.Context, endpoint, rawURL string) (*nvapi.Image, error)
}

func NewUstadzQuote(api MemeRenderer, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("ustadz-quote: client is required")
	}
	return cmd.Definition{
		Name:        "ustadz-quote",
		Description: "Make an ustadz meme with custom text",
		Options: []cmd.Option{
			{Name: "text", Description: "Text for the meme", Type: cmd.OptionString, Required: true, MaxLength: 100},
			{Name: "hidden", Description: "Only you can see the result", Type: cmd.OptionBoolean},
		},
		Cooldown: 15 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			text := inv.Params.String("text", "")
			if err := inv.Reply.Acknowledge(ctx, inv.Params.Bool("hidden", false)); err != nil {
				return err
			}
			log.Info().Msgf("Creating ustadz meme with text: %s", text)

			meme, err := api.Ustadz(ctx, text)
			if err != nil {
				log.Error().Err(err).Msg("Error creating ustadz meme")
				return respond.Fail(ctx, inv.Reply, ustadzError(err))
			}
			img, err := api.Download(ctx, "ustadz-image", meme.URL)
			if err != nil {
				log.Error().Err(err).Str("url", meme.URL).Msg("Error downloading ustadz meme")
				return respond.Fail(ctx, inv.Reply, ustadzError(err))
			}

			var sb strings.Builder
			sb.WriteString("📸 **Ustadz meme ready!**\n")
			fmt.Fprintf(&sb, "💬 **Text:** %s", text)
			if !meme.ExpiresAt.IsZero() {
				fmt.Fprintf(&sb, "\n⏱️ **Expires:** <t:%d:R>", meme.ExpiresAt.Unix())
			}

			if err := inv.Reply.EditReply(ctx, &cmd.Response{
				Content: sb.String(),
				Files:   []cmd.File{{Name: meme.Filename, ContentType: img.ContentType, Data: img.Data}},
			}); err != nil {
				return err
			}
			log.Info().Msgf("Ustadz meme sent for %s", inv.Principal.Username)
			return nil
		},
	}, nil
}

func ustadzError(err error) string {
	var (
		ne net.Error
		ue *nvapi.UpstreamUnavailableError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return "⏱️ Timeout: the API took too long to respond. Please try again."
	case errors.As(err, &ue) && ue.Status > 0:
		return fmt.Sprintf("❌ API Error: %d", ue.Status)
	}
	return "❌ Failed to create the ustadz meme. Please try again later."
}
