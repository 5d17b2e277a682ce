package dispatch

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/pkg/cmd"
)

// State is a step of a single invocation.
type State int

const (
	Received State = iota
	Resolved
	CooldownChecked
	PermissionChecked
	Executing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Received:
		return "RECEIVED"
	case Resolved:
		return "RESOLVED"
	case CooldownChecked:
		return "COOLDOWN_CHECKED"
	case PermissionChecked:
		return "PERMISSION_CHECKED"
	case Executing:
		return "EXECUTING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Outcome is the terminal result of Dispatch. Reached is the last
// non-terminal state the invocation got to.
type Outcome struct {
	State   State
	Reached State
	Err     error
}

// Label is the metrics/outcome name for the result.
func (o Outcome) Label() string {
	if o.Err == nil {
		return "completed"
	}
	var (
		notFound *cmd.NotFoundError
		cooldown *cmd.CooldownActiveError
		denied   *cmd.PermissionDeniedError
	)
	switch {
	case errors.As(o.Err, &notFound):
		return "not_found"
	case errors.As(o.Err, &cooldown):
		return "cooldown"
	case errors.As(o.Err, &denied):
		return "permission_denied"
	default:
		return "handler_error"
	}
}

type trace struct {
	log   zerolog.Logger
	state State
}

func (t *trace) enter(s State) {
	if s != Completed && s != Failed {
		t.state = s
	}
	t.log.Debug().Str("state", s.String()).Msg("Invocation transition")
}
