package ai

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

type Imager interface {
	Imagine(ctx context.Context, prompt string) (*nvapi.Image, error)
}

func NewImagine(api Imager, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil {
		return cmd.Definition{}, errors.New("imagine: client is required")
	}
	return cmd.Definition{
		Name:        "imagine",
		Description: "Generate AI image",
		Options: []cmd.Option{
			{Name: "prompt", Description: "What should be generated?", Type: cmd.OptionString, Required: true, MaxLength: 150},
		},
		Cooldown: 20 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			prompt := inv.Params.String("prompt", "")
			if err := inv.Reply.Acknowledge(ctx, false); err != nil {
				return err
			}

			img, err := api.Imagine(ctx, prompt)
			if err != nil {
				log.Error().Err(err).Str("prompt", prompt).Msg("Image generation failed")
				return respond.Fail(ctx, inv.Reply, "❌ Failed to generate the image. Please try again.")
			}

			return inv.Reply.EditReply(ctx, &cmd.Response{
				Files: []cmd.File{{
					Name:        fmt.Sprintf("ai_%d.%s", inv.ReceivedAt.UnixMilli(), img.Extension()),
					ContentType: img.ContentType,
					Data:        img.Data,
				}},
			})
		},
	}, nil
}
