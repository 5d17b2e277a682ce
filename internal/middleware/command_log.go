// Package middleware holds handler wrappers applied to every command in the
// manifest.
package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/pkg/cmd"
)

// WithCommandLogger logs how each handler run ended and how long it took.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(next cmd.HandlerFunc) cmd.HandlerFunc {
		return func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := next(ctx, inv)

			ev := log.Debug()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("user", inv.Principal.ID).
				Str("origin", inv.Origin.String()).
				Dur("took", time.Since(start)).
				Msgf("/%s finished", inv.Command)
			return err
		}
	}
}
