package utility

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/internal/paginate"
	"github.com/keshon/nvbot/pkg/cmd"
)

const (
	shortURLName  = "short-url"
	shortColor    = 0x4d9be6
	statsColor    = 0x10b981
	closeTimeout  = 10 * time.Second
	actionStats   = "stats"
	actionCopy    = "copy"
	actionDelete  = "delete"
	actionConfirm = "confirm"
	actionCancel  = "cancel"
	maxDisplayURL = 80
)

var slugCleaner = regexp.MustCompile(`[^\w-]`)

// Link is a created short link kept alive while its buttons are usable.
type Link struct {
	nvapi.ShortLink
	Hidden bool
}

type Shortener interface {
	ShortenURL(ctx context.Context, r nvapi.ShortenRequest) (*nvapi.ShortLink, error)
	ShortURLStats(ctx context.Context, slug string) (*nvapi.ShortLink, error)
	DeleteShortURL(ctx context.Context, slug string) error
	ShortLinkURL(slug string) string
}

type shortURL struct {
	api   Shortener
	links *paginate.Manager[Link]
	log   zerolog.Logger
}

// NewShortURL builds /short-url. Stats and Copy buttons stay usable for the
// lifetime of the link session. Delete asks the creator to confirm first.
func NewShortURL(api Shortener, links *paginate.Manager[Link], log zerolog.Logger) (cmd.Definition, error) {
	if api == nil || links == nil {
		return cmd.Definition{}, errors.New("short-url: client and session manager are required")
	}
	c := &shortURL{api: api, links: links, log: log}
	return cmd.Definition{
		Name:        shortURLName,
		Description: "Shorten any URL using NvShortUrl",
		Options: []cmd.Option{
			{Name: "url", Description: "Any URL to shorten (with http:// or https://)", Type: cmd.OptionString, Required: true},
			{Name: "slug", Description: "Custom slug (optional, 3-30 chars)", Type: cmd.OptionString, MinLength: 3, MaxLength: 30},
			{Name: "title", Description: "Custom title (optional)", Type: cmd.OptionString, MaxLength: 100},
			{Name: "desc", Description: "Custom description (optional)", Type: cmd.OptionString, MaxLength: 200},
			{Name: "hidden", Description: "Only you can see the result", Type: cmd.OptionBoolean},
		},
		Cooldown:  10 * time.Second,
		Handler:   c.run,
		Component: c.component,
	}, nil
}

func (c *shortURL) run(ctx context.Context, inv *cmd.Invocation) error {
	raw := inv.Params.String("url", "")
	hidden := inv.Params.Bool("hidden", false)
	if err := inv.Reply.Acknowledge(ctx, hidden); err != nil {
		return err
	}
	c.log.Info().Msgf("Short-URL request from %s", inv.Principal.Username)

	target, ok := prepareURL(raw)
	if !ok {
		return respond.Fail(ctx, inv.Reply, "❌ Invalid URL. Example: `https://example.com` or `http://localhost:3000`")
	}
	c.log.Info().Str("url", respond.Truncate(target, 100)).Msg("Shortening URL")

	link, err := c.api.ShortenURL(ctx, nvapi.ShortenRequest{
		URL:         target,
		Slug:        slugCleaner.ReplaceAllString(inv.Params.String("slug", ""), ""),
		Title:       inv.Params.String("title", ""),
		Description: inv.Params.String("desc", ""),
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Short-URL error")
		return respond.Fail(ctx, inv.Reply, fmt.Sprintf("%s\n\n**URL sent:**\n```%s```", shortenError(err), respond.Truncate(raw, 100)))
	}
	if link.ShortURL == "" {
		link.ShortURL = c.api.ShortLinkURL(link.Slug)
	}
	c.log.Info().Msgf("URL shortened: %s", link.Slug)

	reply := inv.Reply
	s, err := c.links.Open(inv.Principal.ID, []Link{{ShortLink: *link, Hidden: hidden}}, func(_ *paginate.Session[Link], reason paginate.CloseReason) {
		c.removeControls(reply, reason)
	})
	if err != nil {
		return err
	}

	if _, err := s.Edit(func(paginate.View[Link]) error {
		return inv.Reply.EditReply(ctx, &cmd.Response{
			Embeds:     []cmd.Embed{resultEmbed(link)},
			Components: []cmd.ButtonRow{linkButtons(s.ID(), link.ShortURL)},
		})
	}); err != nil {
		s.Close()
		return err
	}
	return nil
}

func (c *shortURL) component(ctx context.Context, ev *cmd.ComponentEvent) error {
	id, action, err := parseLinkID(ev.CustomID)
	if err != nil {
		return err
	}
	s, ok := c.links.Get(id)
	if !ok || s.Closed() {
		return nil
	}
	link := s.Items()[0]

	switch action {
	case actionDelete, actionConfirm, actionCancel:
		if ev.Principal.ID != s.Owner() {
			return nil
		}
	}

	if err := ev.Reply.Acknowledge(ctx, false); err != nil {
		return err
	}
	switch action {
	case actionDelete:
		return ev.Reply.FollowUp(ctx, confirmDelete(id, link.Slug))
	case actionCancel:
		return ev.Reply.EditReply(ctx, &cmd.Response{Content: "🚫 Deletion cancelled.", ClearComponents: true})
	case actionConfirm:
		return c.delete(ctx, ev, s, link.Slug)
	case actionCopy:
		return ev.Reply.FollowUp(ctx, cmd.Text(fmt.Sprintf("📋 **Copy this URL:**\n```%s```", c.api.ShortLinkURL(link.Slug)), true))
	default:
		c.log.Info().Msgf("Fetching stats for: %s", link.Slug)
		stats, err := c.api.ShortURLStats(ctx, link.Slug)
		if err != nil {
			c.log.Error().Err(err).Str("slug", link.Slug).Msg("Stats error")
			return ev.Reply.FollowUp(ctx, cmd.Text("❌ Failed to fetch URL statistics.", true))
		}
		return ev.Reply.FollowUp(ctx, &cmd.Response{Embeds: []cmd.Embed{statsEmbed(stats)}, Ephemeral: link.Hidden})
	}
}

// delete removes the link upstream, then closes its session so the result
// message loses its buttons.
func (c *shortURL) delete(ctx context.Context, ev *cmd.ComponentEvent, s *paginate.Session[Link], slug string) error {
	c.log.Info().Msgf("Deleting short URL: %s", slug)
	if err := c.api.DeleteShortURL(ctx, slug); err != nil {
		c.log.Error().Err(err).Str("slug", slug).Msg("Delete error")
		msg := "❌ Error deleting URL."
		if errors.Is(err, nvapi.ErrNoResult) {
			msg = "❌ Failed to delete URL."
		}
		return ev.Reply.EditReply(ctx, &cmd.Response{Content: msg, ClearComponents: true})
	}
	s.Close()
	return ev.Reply.EditReply(ctx, &cmd.Response{Content: fmt.Sprintf("✅ Successfully deleted **%s**", slug), ClearComponents: true})
}

func (c *shortURL) removeControls(reply cmd.Interaction, reason paginate.CloseReason) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := reply.EditReply(ctx, &cmd.Response{ClearComponents: true}); err != nil {
		c.log.Debug().Err(err).Str("reason", reason.String()).Msg("Failed to remove short-url controls")
	}
}

func linkButtons(session, shortURL string) cmd.ButtonRow {
	row := cmd.ButtonRow{
		{ID: linkID(session, actionStats), Label: "Stats", Style: cmd.ButtonPrimary},
		{ID: linkID(session, actionCopy), Label: "Copy"},
	}
	if shortURL != "" {
		row = append(row, cmd.Button{Label: "Open", URL: shortURL, Style: cmd.ButtonLink})
	}
	return append(row, cmd.Button{ID: linkID(session, actionDelete), Label: "Delete", Style: cmd.ButtonDanger})
}

func confirmDelete(session, slug string) *cmd.Response {
	return &cmd.Response{
		Content: fmt.Sprintf("🗑️ **Delete URL?**\nSlug: `%s`\n\nThis action is **permanent** and cannot be undone!", slug),
		Components: []cmd.ButtonRow{{
			{ID: linkID(session, actionConfirm), Label: "Delete", Style: cmd.ButtonDanger},
			{ID: linkID(session, actionCancel), Label: "Cancel"},
		}},
		Ephemeral: true,
	}
}

func linkID(session, action string) string {
	return shortURLName + ":" + session + ":" + action
}

func parseLinkID(id string) (string, string, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != shortURLName {
		return "", "", fmt.Errorf("malformed custom id %q", id)
	}
	switch parts[2] {
	case actionStats, actionCopy, actionDelete, actionConfirm, actionCancel:
		return parts[1], parts[2], nil
	}
	return "", "", fmt.Errorf("unknown action in custom id %q", id)
}

func resultEmbed(l *nvapi.ShortLink) cmd.Embed {
	em := cmd.Embed{
		Title:       "✅ URL Shortened",
		Description: fmt.Sprintf("**Short URL:** `%s`", l.ShortURL),
		Color:       shortColor,
		Fields: []cmd.EmbedField{
			{Name: "Original URL", Value: displayURL(l.OriginalURL)},
			{Name: "Slug", Value: "`" + l.Slug + "`", Inline: true},
			{Name: "Created", Value: relative(l.CreatedAt, "Just now"), Inline: true},
		},
		Footer:     "NvLabs X NSU",
		FooterIcon: respond.FooterIcon,
		Timestamp:  true,
	}
	if strings.TrimSpace(l.Title) != "" {
		em.Fields = append(em.Fields, cmd.EmbedField{Name: "📝 Title", Value: respond.Truncate(respond.EscapeMarkdown(l.Title), respond.MaxFieldValue)})
	}
	if strings.TrimSpace(l.Description) != "" {
		em.Fields = append(em.Fields, cmd.EmbedField{Name: "📄 Description", Value: respond.Truncate(respond.EscapeMarkdown(l.Description), respond.MaxFieldValue)})
	}
	return em
}

func statsEmbed(l *nvapi.ShortLink) cmd.Embed {
	status := "❌ Inactive"
	if l.Active {
		status = "✅ Active"
	}
	return cmd.Embed{
		Title:       "URL Statistics",
		Description: fmt.Sprintf("**Slug:** `%s`", l.Slug),
		Color:       statsColor,
		Fields: []cmd.EmbedField{
			{Name: "Visits", Value: fmt.Sprintf("**%d** clicks", l.Visits), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Created", Value: relative(l.CreatedAt, "Unknown"), Inline: true},
			{Name: "Last Visit", Value: relative(l.LastAccessed, "Never"), Inline: true},
			{Name: "Short URL", Value: "`" + l.ShortURL + "`"},
			{Name: "Original URL", Value: displayURL(l.OriginalURL)},
		},
		Footer:     "NSU Stats",
		FooterIcon: respond.FooterIcon,
		Timestamp:  true,
	}
}

// prepareURL trims the input and adds https:// when it has no scheme.
func prepareURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil || u.Host == "" {
			return "", false
		}
	}
	return u.String(), true
}

// displayURL escapes a URL for an embed field and shortens long ones to
// host plus a clipped path.
func displayURL(raw string) string {
	escaped := respond.EscapeMarkdown(raw)
	if len(escaped) <= maxDisplayURL {
		return escaped
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "`" + respond.Truncate(escaped, maxDisplayURL) + "`"
	}
	host := u.Hostname()
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	switch {
	case len(host) > 40:
		return "`" + respond.Truncate(host, 40) + "`"
	case len(path) > 40:
		return "`" + host + respond.Truncate(path, 40) + "`"
	}
	return "`" + host + path + "`"
}

func shortenError(err error) string {
	var ue *nvapi.UpstreamUnavailableError
	switch {
	case errors.As(err, &ue) && ue.Status == 400 && strings.Contains(ue.Message, "already exists"):
		return "❌ That slug is already taken. Try another one."
	case errors.As(err, &ue) && ue.Status == 400:
		return "❌ The URL is invalid or contains forbidden characters."
	case errors.As(err, &ue) && ue.Message != "":
		return "❌ " + ue.Message
	case errors.Is(err, nvapi.ErrNoResult):
		return "❌ The API did not respond correctly."
	}
	return "❌ Failed to shorten the URL."
}

func relative(t time.Time, zero string) string {
	if t.IsZero() {
		return zero
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
