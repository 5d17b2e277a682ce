// Package cmd provides a transport-agnostic command core: a command is a
// Definition with a name, description, parameter schema and a handler. How it
// is declared and delivered (Discord slash, CLI, HTTP) is defined by adapters
// that implement Interaction and feed Invocations into a dispatcher.
package cmd

import (
	"context"
	"errors"
	"time"
)

// Permission is a single permission bit as understood by the transport.
type Permission int64

// Principal identifies who triggered an invocation or component event.
type Principal struct {
	ID          string
	Username    string
	Permissions Permission // bitset; zero when the transport has no notion of it
}

// Has reports whether every bit of p is present in the principal's set.
func (pr Principal) Has(p Permission) bool {
	return pr.Permissions&p == p
}

// Origin describes where an invocation came from, for logging only.
type Origin struct {
	GuildID   string
	GuildName string
	ChannelID string
}

// String renders the origin the way log lines expect it.
func (o Origin) String() string {
	switch {
	case o.GuildName != "":
		return o.GuildName
	case o.GuildID != "":
		return o.GuildID
	default:
		return "DM"
	}
}

// Interaction is the reply surface an adapter hands to the core. Reply is the
// first response and fails once anything was sent; EditReply requires a prior
// Acknowledge or Reply; FollowUp adds messages after the first.
type Interaction interface {
	Acknowledge(ctx context.Context, ephemeral bool) error
	Reply(ctx context.Context, r *Response) error
	EditReply(ctx context.Context, r *Response) error
	FollowUp(ctx context.Context, r *Response) error
	Responded() bool
}

var (
	ErrAlreadyResponded = errors.New("interaction already responded")
	ErrNotResponded     = errors.New("interaction not acknowledged yet")
)

// Invocation is a single user-triggered request to run a named command.
type Invocation struct {
	Command    string
	Principal  Principal
	Origin     Origin
	Params     Params
	Reply      Interaction
	ReceivedAt time.Time
}

// ComponentEvent is a follow-up action (button press) on a message produced by
// a command. CustomID carries the adapter-level routing key.
type ComponentEvent struct {
	CustomID  string
	Principal Principal
	Origin    Origin
	Reply     Interaction
}

// Params holds resolved command options keyed by option name.
type Params map[string]any

// String returns the string option or def when absent.
func (p Params) String(name, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return def
}

// Int returns the integer option or def when absent. Float values from JSON
// decoders are truncated.
func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean option or def when absent.
func (p Params) Bool(name string, def bool) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return def
}
