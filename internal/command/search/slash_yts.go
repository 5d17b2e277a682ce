package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/respond"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/internal/paginate"
	"github.com/keshon/nvbot/pkg/cmd"
)

const (
	ytsName      = "yts"
	ytsColor     = 0xff0000
	channelIcon  = "https://cdn.discordapp.com/emojis/847471806018322473.png"
	maxResults   = 5
	closeTimeout = 10 * time.Second
)

// Result is one search hit together with the query that produced it.
type Result struct {
	nvapi.Video
	Query string
}

type Searcher interface {
	SearchYouTube(ctx context.Context, query string, limit int) ([]nvapi.Video, error)
}

type yts struct {
	api      Searcher
	sessions *paginate.Manager[Result]
	log      zerolog.Logger
}

// NewYTS builds /yts: a YouTube search whose results are paged through with
// buttons until the session expires.
func NewYTS(api Searcher, sessions *paginate.Manager[Result], log zerolog.Logger) (cmd.Definition, error) {
	if api == nil || sessions == nil {
		return cmd.Definition{}, errors.New("yts: search client and session manager are required")
	}
	c := &yts{api: api, sessions: sessions, log: log}
	return cmd.Definition{
		Name:        ytsName,
		Description: "Search YouTube videos",
		Options: []cmd.Option{
			{Name: "query", Description: "What to search on YouTube", Type: cmd.OptionString, Required: true, MaxLength: 100},
			{Name: "hidden", Description: "Only you can see the results", Type: cmd.OptionBoolean},
		},
		Cooldown:  5 * time.Second,
		Handler:   c.run,
		Component: c.component,
	}, nil
}

func (c *yts) run(ctx context.Context, inv *cmd.Invocation) error {
	query := inv.Params.String("query", "")
	hidden := inv.Params.Bool("hidden", false)
	if err := inv.Reply.Acknowledge(ctx, hidden); err != nil {
		return err
	}
	c.log.Info().Msgf("YouTube search: %q", query)

	videos, err := c.api.SearchYouTube(ctx, query, maxResults)
	if err != nil && !errors.Is(err, nvapi.ErrNoResult) {
		c.log.Error().Err(err).Msg("YouTube search error")
		return respond.Fail(ctx, inv.Reply, "❌ Failed to search videos. Please try again later.")
	}

	results := make([]Result, 0, len(videos))
	for _, v := range videos {
		if v.URL == "" && v.VideoID != "" {
			v.URL = "https://www.youtube.com/watch?v=" + v.VideoID
		}
		results = append(results, Result{Video: v, Query: query})
	}

	reply := inv.Reply
	s, err := c.sessions.Open(inv.Principal.ID, results, func(_ *paginate.Session[Result], reason paginate.CloseReason) {
		c.removeControls(reply, reason)
	})
	if errors.Is(err, paginate.ErrEmpty) {
		return respond.Fail(ctx, inv.Reply, fmt.Sprintf("❌ No results found for **%s**", query))
	}
	if err != nil {
		return err
	}

	if _, err := s.Edit(func(v paginate.View[Result]) error {
		return inv.Reply.EditReply(ctx, page(s.ID(), v))
	}); err != nil {
		s.Close()
		return err
	}
	c.log.Info().Msgf("YouTube search completed: %q - %d results", query, len(results))
	return nil
}

func (c *yts) component(ctx context.Context, ev *cmd.ComponentEvent) error {
	id, action, err := parseCustomID(ev.CustomID)
	if err != nil {
		return err
	}

	s, out := c.sessions.Handle(id, paginate.Event{Principal: ev.Principal.ID, Action: action})
	switch out.Result {
	case paginate.Moved:
		if err := ev.Reply.Acknowledge(ctx, false); err != nil {
			return err
		}
		// The session may have closed while acknowledging.
		_, err := s.Edit(func(v paginate.View[Result]) error {
			return ev.Reply.EditReply(ctx, page(id, v))
		})
		return err
	case paginate.Expanded:
		if err := ev.Reply.Acknowledge(ctx, false); err != nil {
			return err
		}
		return ev.Reply.FollowUp(ctx, &cmd.Response{Content: listing(out.Items), Ephemeral: true})
	case paginate.Unchanged:
		return ev.Reply.Acknowledge(ctx, false)
	default:
		// Ignored or Closed: nothing is sent.
		return nil
	}
}

// removeControls runs once per session, from the TTL timer or eviction, after
// the invocation context is long gone.
func (c *yts) removeControls(reply cmd.Interaction, reason paginate.CloseReason) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := reply.EditReply(ctx, &cmd.Response{ClearComponents: true}); err != nil {
		c.log.Debug().Err(err).Str("reason", reason.String()).Msg("Failed to remove search controls")
	}
}

func customID(session string, a paginate.Action) string {
	return ytsName + ":" + session + ":" + a.String()
}

func parseCustomID(id string) (string, paginate.Action, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != ytsName {
		return "", 0, fmt.Errorf("malformed custom id %q", id)
	}
	action, ok := paginate.ParseAction(parts[2])
	if !ok {
		return "", 0, fmt.Errorf("unknown action in custom id %q", id)
	}
	return parts[1], action, nil
}

func page(session string, v paginate.View[Result]) *cmd.Response {
	r := v.Item
	row := cmd.ButtonRow{
		{ID: customID(session, paginate.ActionPrevious), Label: "◀️ Previous", Disabled: !v.HasPrevious},
		{ID: customID(session, paginate.ActionNext), Label: "Next ▶️", Disabled: !v.HasNext},
	}
	if r.URL != "" {
		row = append(row, cmd.Button{Label: "🎥 Watch", URL: r.URL, Style: cmd.ButtonLink})
	}
	row = append(row, cmd.Button{ID: customID(session, paginate.ActionExpand), Label: "📋 All Results", Style: cmd.ButtonPrimary})

	return &cmd.Response{
		Embeds: []cmd.Embed{{
			Title:       respond.Truncate(r.Title, 256),
			URL:         r.URL,
			Color:       ytsColor,
			Author:      r.Channel,
			AuthorIcon:  channelIcon,
			Description: TruncateDescription(r.Description, 200),
			Fields: []cmd.EmbedField{
				{Name: "⏱️ Duration", Value: orNA(r.Duration), Inline: true},
				{Name: "👁️ Views", Value: FormatViews(r.Views), Inline: true},
				{Name: "📅 Uploaded", Value: orNA(r.Uploaded), Inline: true},
			},
			Image:      r.ImageURL,
			Footer:     fmt.Sprintf("Result %d/%d • Search: %q", v.Position, v.Total, r.Query),
			FooterIcon: respond.FooterIcon,
			Timestamp:  true,
		}},
		Components: []cmd.ButtonRow{row},
	}
}

func listing(items []Result) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**📋 All Results for %q**\n\n", items[0].Query)
	for i, r := range items {
		fmt.Fprintf(&sb, "**%d. %s**\n", i+1, r.Title)
		fmt.Fprintf(&sb, "👤 %s | ⏱️ %s | 👁️ %s | 📅 %s\n", r.Channel, orNA(r.Duration), FormatViews(r.Views), orNA(r.Uploaded))
		fmt.Fprintf(&sb, "🔗 %s\n\n", r.URL)
	}
	fmt.Fprintf(&sb, "*Total: %d results*", len(items))
	return respond.Truncate(sb.String(), respond.MaxContent)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
