// Package respond has the reply helpers shared by command handlers.
package respond

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/keshon/nvbot/pkg/cmd"
)

// FooterIcon is the NvLabs logo used in embed footers.
const FooterIcon = "https://nvlabs.my.id/files/my.png"

// Discord message limits.
const (
	MaxContent     = 2000
	MaxDescription = 4096
	MaxFieldValue  = 1024
)

// Fail tells the user an operation failed. A deferred reply is edited in
// place; otherwise a private reply is sent.
func Fail(ctx context.Context, r cmd.Interaction, msg string) error {
	if r.Responded() {
		return r.EditReply(ctx, &cmd.Response{Content: msg})
	}
	return r.Reply(ctx, cmd.Text(msg, true))
}

// Embed replaces the deferred reply with a single embed.
func Embed(ctx context.Context, r cmd.Interaction, e cmd.Embed) error {
	return r.EditReply(ctx, &cmd.Response{Embeds: []cmd.Embed{e}})
}

// Truncate shortens s to at most max runes, ending with "..." when cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	"`", "\\`",
	`|`, `\|`,
	`>`, `\>`,
)

// EscapeMarkdown neutralizes Discord formatting characters.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
