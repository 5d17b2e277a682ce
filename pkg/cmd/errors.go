package cmd

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NotFoundError means the transport delivered a command the registry does not
// know. It is a server-side desync and is never shown to the user.
type NotFoundError struct {
	Command string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command %q not found", e.Command)
}

// DuplicateCommandError is returned by Registry.Register when the identifier
// is already taken. The earlier definition is kept.
type DuplicateCommandError struct {
	Command string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q already registered", e.Command)
}

// InvalidDefinitionError is returned for definitions that cannot be served.
type InvalidDefinitionError struct {
	Command string
	Reason  string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Command, e.Reason)
}

// CooldownActiveError is a user-visible rejection while a cooldown runs.
type CooldownActiveError struct {
	Command   string
	Remaining time.Duration
}

// Seconds returns the remaining wait rounded up to whole seconds.
func (e *CooldownActiveError) Seconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("command %q on cooldown for %ds", e.Command, e.Seconds())
}

// PermissionDeniedError lists the permissions the principal lacks.
type PermissionDeniedError struct {
	Command string
	Missing []string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("command %q missing permissions: %s", e.Command, strings.Join(e.Missing, ", "))
}

// HandlerExecutionError wraps anything a handler returned or panicked with.
type HandlerExecutionError struct {
	Command string
	Err     error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error { return e.Err }
