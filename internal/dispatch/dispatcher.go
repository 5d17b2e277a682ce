// Package dispatch runs command invocations through resolution, cooldown and
// permission gates, and turns handler failures into user-visible replies.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/cooldown"
	"github.com/keshon/nvbot/internal/metrics"
	"github.com/keshon/nvbot/pkg/cmd"
)

const (
	msgCooldown   = "⏳ Please wait %d second(s) before reusing this command."
	msgPermission = "❌ You need the following permissions: %s"
	msgFailure    = "❌ There was an error while executing this command!"
)

// PermissionNamer turns a permission bit into a human-readable name.
type PermissionNamer func(cmd.Permission) string

// Dispatcher is safe for concurrent use: the registry is read-only after load
// and the cooldown is claimed atomically before the handler runs.
type Dispatcher struct {
	registry  *cmd.Registry
	cooldowns *cooldown.Tracker
	log       zerolog.Logger
	metrics   *metrics.Metrics
	names     PermissionNamer
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithPermissionNames(n PermissionNamer) Option {
	return func(d *Dispatcher) { d.names = n }
}

func New(reg *cmd.Registry, cooldowns *cooldown.Tracker, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  reg,
		cooldowns: cooldowns,
		log:       log,
		names:     func(p cmd.Permission) string { return fmt.Sprintf("0x%x", int64(p)) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch drives one invocation to a terminal state and reports it.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *cmd.Invocation) Outcome {
	t := &trace{log: d.log.With().
		Str("command", inv.Command).
		Str("principal", inv.Principal.ID).
		Str("origin", inv.Origin.String()).
		Logger()}
	t.enter(Received)

	def, ok := d.registry.Get(inv.Command)
	if !ok {
		err := &cmd.NotFoundError{Command: inv.Command}
		t.log.Error().Err(err).Msg("Command not found")
		return d.finish(t, inv.Command, err)
	}
	t.enter(Resolved)

	if def.Cooldown > 0 {
		if left := d.cooldowns.Remaining(inv.Principal.ID, def.Name); left > 0 {
			return d.rejectCooldown(ctx, t, inv, def.Name, left)
		}
	}
	t.enter(CooldownChecked)

	if missing := d.missingPermissions(def, inv.Principal); len(missing) > 0 {
		err := &cmd.PermissionDeniedError{Command: def.Name, Missing: missing}
		t.log.Warn().Strs("missing", missing).Msg("Missing permissions")
		d.notify(ctx, t, inv, fmt.Sprintf(msgPermission, strings.Join(missing, ", ")))
		return d.finish(t, def.Name, err)
	}
	t.enter(PermissionChecked)

	// A concurrent invocation may have started the cooldown since the check.
	if left, ok := d.cooldowns.Acquire(inv.Principal.ID, def.Name, def.Cooldown); !ok {
		return d.rejectCooldown(ctx, t, inv, def.Name, left)
	}
	t.enter(Executing)
	t.log.Info().Msgf("%s used /%s in %s", displayUser(inv.Principal), def.Name, inv.Origin)

	start := time.Now()
	err := run(ctx, def, inv)
	d.metrics.ObserveHandler(def.Name, time.Since(start).Seconds())

	if err != nil {
		t.log.Error().Err(err).Msgf("Error executing command %s", def.Name)
		d.reportFailure(ctx, t, inv)
		return d.finish(t, def.Name, err)
	}
	return d.finish(t, def.Name, nil)
}

// DispatchComponent routes a component event to the command that produced the
// message. Unknown commands and commands without a component handler are
// dropped server-side.
func (d *Dispatcher) DispatchComponent(ctx context.Context, command string, ev *cmd.ComponentEvent) error {
	log := d.log.With().
		Str("command", command).
		Str("principal", ev.Principal.ID).
		Str("custom_id", ev.CustomID).
		Logger()

	def, ok := d.registry.Get(command)
	if !ok {
		err := &cmd.NotFoundError{Command: command}
		log.Warn().Err(err).Msg("No command for component")
		return err
	}
	if def.Component == nil {
		log.Warn().Msg("Command does not handle components")
		return nil
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				log.Error().Str("stack", string(debug.Stack())).Msg("Component handler panicked")
			}
		}()
		return def.Component(ctx, ev)
	}()
	if err != nil {
		log.Error().Err(err).Msg("Component interaction error")
		return &cmd.HandlerExecutionError{Command: command, Err: err}
	}
	log.Debug().Msg("Component handled")
	return nil
}

func run(ctx context.Context, def cmd.Definition, inv *cmd.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &cmd.HandlerExecutionError{
				Command: def.Name,
				Err:     fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
		}
	}()
	if herr := def.Handler(ctx, inv); herr != nil {
		var already *cmd.HandlerExecutionError
		if errors.As(herr, &already) {
			return herr
		}
		return &cmd.HandlerExecutionError{Command: def.Name, Err: herr}
	}
	return nil
}

func (d *Dispatcher) rejectCooldown(ctx context.Context, t *trace, inv *cmd.Invocation, command string, left time.Duration) Outcome {
	err := &cmd.CooldownActiveError{Command: command, Remaining: left}
	t.log.Warn().Int("remaining_s", err.Seconds()).Msg("Command on cooldown")
	d.notify(ctx, t, inv, fmt.Sprintf(msgCooldown, err.Seconds()))
	return d.finish(t, command, err)
}

func (d *Dispatcher) missingPermissions(def cmd.Definition, pr cmd.Principal) []string {
	var missing []string
	for _, p := range def.Permissions {
		if !pr.Has(p) {
			missing = append(missing, d.names(p))
		}
	}
	return missing
}

// notify sends a gate rejection. Nothing has been sent for the invocation at
// this point, so it is always an initial reply.
func (d *Dispatcher) notify(ctx context.Context, t *trace, inv *cmd.Invocation, msg string) {
	if inv.Reply == nil {
		return
	}
	if err := inv.Reply.Reply(ctx, cmd.Text(msg, true)); err != nil {
		t.log.Warn().Err(err).Msg("Failed to send rejection reply")
	}
}

// reportFailure sends exactly one failure notice: a fresh reply when nothing
// was sent yet, a follow-up otherwise.
func (d *Dispatcher) reportFailure(ctx context.Context, t *trace, inv *cmd.Invocation) {
	if inv.Reply == nil {
		return
	}
	msg := cmd.Text(msgFailure, true)

	if !inv.Reply.Responded() {
		err := inv.Reply.Reply(ctx, msg)
		if err == nil {
			return
		}
		if !errors.Is(err, cmd.ErrAlreadyResponded) {
			t.log.Warn().Err(err).Msg("Failed to send failure reply")
			return
		}
	}
	if err := inv.Reply.FollowUp(ctx, msg); err != nil {
		t.log.Warn().Err(err).Msg("Failed to send failure follow-up")
	}
}

func (d *Dispatcher) finish(t *trace, command string, err error) Outcome {
	out := Outcome{State: Completed, Reached: t.state, Err: err}
	if err != nil {
		out.State = Failed
	}
	t.enter(out.State)
	d.metrics.ObserveDispatch(command, out.Label())
	return out
}

func displayUser(p cmd.Principal) string {
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}
