package utility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
)

const pingColor = 0x00ff00

// Gateway reports the heartbeat round trip of the live connection.
type Gateway interface {
	Latency() time.Duration
}

type HealthChecker interface {
	Health(ctx context.Context) (*nvapi.Health, error)
}

// NewPing builds /ping. startedAt is the process start; clk nil means the
// wall clock.
func NewPing(api HealthChecker, gw Gateway, startedAt time.Time, clk clock.PassiveClock, log zerolog.Logger) (cmd.Definition, error) {
	if api == nil || gw == nil {
		return cmd.Definition{}, errors.New("ping: health client and gateway are required")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return cmd.Definition{
		Name:        "ping",
		Description: "Check bot and API latency",
		Options: []cmd.Option{
			{Name: "hidden", Description: "Hide this reply", Type: cmd.OptionBoolean},
		},
		Cooldown: 5 * time.Second,
		Handler: func(ctx context.Context, inv *cmd.Invocation) error {
			start := clk.Now()
			if err := inv.Reply.Acknowledge(ctx, inv.Params.Bool("hidden", false)); err != nil {
				return err
			}
			botLatency := clk.Since(start)

			apiLatency, apiUptime := "Error", "Error"
			if h, err := api.Health(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to fetch API health")
			} else {
				apiLatency, apiUptime = h.Latency, h.Uptime
			}

			return respond.Embed(ctx, inv.Reply, cmd.Embed{
				Title:       "🏓 Pong!",
				Description: "Current system latency stats",
				Color:       pingColor,
				Fields: []cmd.EmbedField{
					{Name: "Bot Latency", Value: fmt.Sprintf("`%dms`", botLatency.Milliseconds()), Inline: true},
					{Name: "WebSocket", Value: fmt.Sprintf("`%dms`", gw.Latency().Milliseconds()), Inline: true},
					{Name: "Bot Uptime", Value: fmt.Sprintf("`%ds`", int(clk.Since(startedAt).Seconds())), Inline: true},
					{Name: "API Latency", Value: fmt.Sprintf("`%s`ms", apiLatency), Inline: true},
					{Name: "API Uptime", Value: fmt.Sprintf("`%s`", apiUptime), Inline: true},
				},
				Footer:     "Requested by " + inv.Principal.Username,
				FooterIcon: respond.FooterIcon,
				Timestamp:  true,
			})
		},
	}, nil
}
