// Package cmdtest provides an in-memory cmd.Interaction for tests.
package cmdtest

import (
	"context"
	"sync"

	"github.com/keshon/nvbot/pkg/cmd"
)

// Kind names the Interaction call that produced a recorded message.
type Kind string

const (
	KindAck      Kind = "ack"
	KindReply    Kind = "reply"
	KindEdit     Kind = "edit"
	KindFollowUp Kind = "followup"
)

// Message is one recorded call.
type Message struct {
	Kind      Kind
	Ephemeral bool
	Response  *cmd.Response
}

// Recorder enforces the same sequencing rules as the Discord adapter and keeps
// every call for later inspection. Fail, when set, is returned by every call.
type Recorder struct {
	mu        sync.Mutex
	responded bool
	Messages  []Message
	Fail      error
}

var _ cmd.Interaction = (*Recorder)(nil)

func New() *Recorder { return &Recorder{} }

func (r *Recorder) Acknowledge(_ context.Context, ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if r.responded {
		return cmd.ErrAlreadyResponded
	}
	r.responded = true
	r.Messages = append(r.Messages, Message{Kind: KindAck, Ephemeral: ephemeral})
	return nil
}

func (r *Recorder) Reply(_ context.Context, resp *cmd.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if r.responded {
		return cmd.ErrAlreadyResponded
	}
	r.responded = true
	r.Messages = append(r.Messages, Message{Kind: KindReply, Ephemeral: resp.Ephemeral, Response: resp})
	return nil
}

func (r *Recorder) EditReply(_ context.Context, resp *cmd.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if !r.responded {
		return cmd.ErrNotResponded
	}
	r.Messages = append(r.Messages, Message{Kind: KindEdit, Ephemeral: resp.Ephemeral, Response: resp})
	return nil
}

func (r *Recorder) FollowUp(_ context.Context, resp *cmd.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if !r.responded {
		return cmd.ErrNotResponded
	}
	r.Messages = append(r.Messages, Message{Kind: KindFollowUp, Ephemeral: resp.Ephemeral, Response: resp})
	return nil
}

func (r *Recorder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Messages...)
}

// Last returns the most recent message, or the zero Message.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

// Contents lists the text content of every message with a response body.
func (r *Recorder) Contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.Messages {
		if m.Response != nil {
			out = append(out, m.Response.Content)
		}
	}
	return out
}
