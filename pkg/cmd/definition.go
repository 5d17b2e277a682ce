package cmd

import (
	"context"
	"time"
)

// HandlerFunc executes an invocation. Returning an error (or panicking) hands
// the failure to the dispatcher, which turns it into a user-visible reply.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// ComponentFunc handles follow-up component events routed to a command.
type ComponentFunc func(ctx context.Context, ev *ComponentEvent) error

type OptionType int

const (
	OptionString OptionType = iota + 1
	OptionInteger
	OptionBoolean
	OptionUser
)

func (t OptionType) String() string {
	switch t {
	case OptionString:
		return "string"
	case OptionInteger:
		return "integer"
	case OptionBoolean:
		return "boolean"
	case OptionUser:
		return "user"
	}
	return "unknown"
}

type Choice struct {
	Name  string
	Value string
}

// Option is one declared parameter. Zero limits mean "unbounded".
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *float64
	MaxValue    *float64
	Choices     []Choice
}

// Definition describes a command: identity, declaration surface, dispatch
// policy and behavior.
type Definition struct {
	Name        string
	Description string
	Options     []Option
	Cooldown    time.Duration
	Permissions []Permission
	Handler     HandlerFunc
	Component   ComponentFunc
}

// Limit returns a pointer usable as Option.MinValue / Option.MaxValue.
func Limit(v float64) *float64 { return &v }
