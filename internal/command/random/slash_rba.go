package random

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

type ImageSource interface {
	BlueArchive(ctx context.Context) (*nvapi.Image, error)
}

func NewRBA(api ImageSource, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("rba: client is required")
	}
	return cmd.Definition{
		Name:        "rba",
		Description: "Get random Blue Archive character image",
		Cooldown:    3 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			if err := inv.Reply.Acknowledge(ctx, false); err != nil {
				return err
			}
			log.Info().Msgf("Fetching Blue Archive image for %s", inv.Principal.Username)

			img, err := api.BlueArchive(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to fetch Blue Archive image")
				return respond.Fail(ctx, inv.Reply, "❌ Failed to fetch the image.")
			}

			if err := inv.Reply.EditReply(ctx, &cmd.Response{
				Files: []cmd.File{{
					Name:        fmt.Sprintf("bluearchive_%d.%s", inv.ReceivedAt.UnixMilli(), img.Extension()),
					ContentType: img.ContentType,
					Data:        img.Data,
				}},
			}); err != nil {
				return err
			}
			log.Info().Int("bytes", len(img.Data)).Msgf("Image sent for %s", inv.Principal.Username)
			return nil
		},
	}, nil
}
