package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/keshon/nvbot/pkg/cmd"
)

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	boom := errors.New("boom")

	h := cmd.Apply(func(context.Context, *cmd.Invocation) error { return boom }, WithCommandLogger(log))
	err := h(context.Background(), &cmd.Invocation{Command: "ping", Principal: cmd.Principal{ID: "7"}})

	assert.ErrorIs(t, err, boom)
	line := gjson.Parse(buf.String())
	assert.Equal(t, "warn", line.Get("level").String())
	assert.Equal(t, "/ping finished", line.Get("message").String())
	assert.Equal(t, "7", line.Get("user").String())
	assert.Equal(t, "DM", line.Get("origin").String())
}

func TestWrapKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	called := false
	def := cmd.Wrap(cmd.Definition{
		Name:      "yts",
		Handler:   func(context.Context, *cmd.Invocation) error { return nil },
		Component: func(context.Context, *cmd.ComponentEvent) error { called = true; return nil },
	}, WithCommandLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	assert.NoError(t, def.Handler(context.Background(), &cmd.Invocation{Command: "yts"}))
	assert.Equal(t, "debug", gjson.Get(buf.String(), "level").String())

	assert.NoError(t, def.Component(context.Background(), &cmd.ComponentEvent{}))
	assert.True(t, called)
}
