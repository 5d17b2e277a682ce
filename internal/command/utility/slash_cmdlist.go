package utility

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/docs"
	"github.com/keshon/nvbot/pkg/cmd"
)

const cmdlistColor = 0x5865f2

// Lister is the read side of the command registry.
type Lister interface {
	List() []cmd.Definition
}

// NewCmdList builds /cmdlist. categoryOf is resolved per call, so it may be
// bound after the manifest is loaded.
func NewCmdList(reg Lister, categoryOf func(name string) string, log zerolog.Logger) (cmd.Definition, error) {
	if reg == nil || categoryOf == nil {
		return cmd.Definition{}, errors.New("cmdlist: registry and category lookup are required")
	}
	return cmd.Definition{
		Name:        "cmdlist",
		Description: "Show all available commands",
		Options: []cmd.Option{
			{Name: "hidden", Description: "Only you can see the commands list", Type: cmd.OptionBoolean},
		},
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			if err := inv.Reply.Acknowledge(ctx, inv.Params.Bool("hidden", false)); err != nil {
				return err
			}
			log.Info().Msgf("Cmdlist request from %s", inv.Principal.Username)

			defs := reg.List()
			if len(defs) == 0 {
				return respond.Fail(ctx, inv.Reply, "❌ No commands available.")
			}

			em := cmd.Embed{
				Title:       "📋 Available Commands",
				Description: fmt.Sprintf("**Total:** %d commands", len(defs)),
				Color:       cmdlistColor,
				Footer:      "Requested by " + inv.Principal.Username,
				FooterIcon:  respond.FooterIcon,
				Timestamp:   true,
			}
			for _, s := range docs.Sections(defs, categoryOf) {
				lines := make([]string, 0, len(s.Commands))
				for _, d := range s.Commands {
					lines = append(lines, fmt.Sprintf("`/%s` - %s", d.Name, d.Description))
				}
				em.Fields = append(em.Fields, cmd.EmbedField{
					Name:  s.Title(),
					Value: respond.Truncate(strings.Join(lines, "\n"), respond.MaxFieldValue),
				})
			}

			if err := respond.Embed(ctx, inv.Reply, em); err != nil {
				return err
			}
			log.Info().Msgf("Sent %d commands list", len(defs))
			return nil
		},
	}, nil
}
