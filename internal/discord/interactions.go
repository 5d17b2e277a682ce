package discord

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/nvbot/pkg/cmd"
)

// responder is the REST surface an interaction reply needs. *discordgo.Session
// satisfies it.
type responder interface {
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, e *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, p *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error)
}

// interaction implements cmd.Interaction for one Discord interaction. For
// component interactions Acknowledge defers a message update, so EditReply
// rewrites the message that carried the button.
type interaction struct {
	rest      responder
	i         *discordgo.Interaction
	component bool

	mu        sync.Mutex
	responded bool
}

var _ cmd.Interaction = (*interaction)(nil)

func newInteraction(rest responder, i *discordgo.Interaction) *interaction {
	return &interaction{
		rest:      rest,
		i:         i,
		component: i.Type == discordgo.InteractionMessageComponent,
	}
}

func (r *interaction) Acknowledge(ctx context.Context, ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		return cmd.ErrAlreadyResponded
	}

	typ := discordgo.InteractionResponseDeferredChannelMessageWithSource
	if r.component {
		typ = discordgo.InteractionResponseDeferredMessageUpdate
	}
	resp := &discordgo.InteractionResponse{Type: typ, Data: &discordgo.InteractionResponseData{}}
	if ephemeral {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := r.rest.InteractionRespond(r.i, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	r.responded = true
	return nil
}

func (r *interaction) Reply(ctx context.Context, resp *cmd.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		return cmd.ErrAlreadyResponded
	}

	err := r.rest.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData(resp),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	r.responded = true
	return nil
}

func (r *interaction) EditReply(ctx context.Context, resp *cmd.Response) error {
	if !r.Responded() {
		return cmd.ErrNotResponded
	}
	_, err := r.rest.InteractionResponseEdit(r.i, webhookEdit(resp), discordgo.WithContext(ctx))
	return err
}

func (r *interaction) FollowUp(ctx context.Context, resp *cmd.Response) error {
	if !r.Responded() {
		return cmd.ErrNotResponded
	}
	_, err := r.rest.FollowupMessageCreate(r.i, true, webhookParams(resp), discordgo.WithContext(ctx))
	return err
}

func (r *interaction) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

// --- conversion ---

func responseData(resp *cmd.Response) *discordgo.InteractionResponseData {
	d := &discordgo.InteractionResponseData{
		Content:    resp.Content,
		Embeds:     embeds(resp.Embeds),
		Components: components(resp.Components),
		Files:      files(resp.Files),
	}
	if resp.Ephemeral {
		d.Flags = discordgo.MessageFlagsEphemeral
	}
	return d
}

// webhookEdit leaves fields the response does not set untouched on the
// message, except when ClearComponents asks for the controls to go.
func webhookEdit(resp *cmd.Response) *discordgo.WebhookEdit {
	e := &discordgo.WebhookEdit{Files: files(resp.Files)}
	if resp.Content != "" || len(resp.Embeds) > 0 || len(resp.Files) > 0 {
		content := resp.Content
		e.Content = &content
	}
	if len(resp.Embeds) > 0 {
		em := embeds(resp.Embeds)
		e.Embeds = &em
	}
	switch {
	case resp.ClearComponents:
		none := []discordgo.MessageComponent{}
		e.Components = &none
	case len(resp.Components) > 0:
		c := components(resp.Components)
		e.Components = &c
	}
	return e
}

func webhookParams(resp *cmd.Response) *discordgo.WebhookParams {
	p := &discordgo.WebhookParams{
		Content:    resp.Content,
		Embeds:     embeds(resp.Embeds),
		Components: components(resp.Components),
		Files:      files(resp.Files),
	}
	if resp.Ephemeral {
		p.Flags = discordgo.MessageFlagsEphemeral
	}
	return p
}

func embeds(in []cmd.Embed) []*discordgo.MessageEmbed {
	if len(in) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(in))
	for _, e := range in {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.Author != "" {
			me.Author = &discordgo.MessageEmbedAuthor{Name: e.Author, IconURL: e.AuthorIcon}
		}
		if e.Image != "" {
			me.Image = &discordgo.MessageEmbedImage{URL: e.Image}
		}
		if e.Thumbnail != "" {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer, IconURL: e.FooterIcon}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Timestamp {
			me.Timestamp = time.Now().Format(time.RFC3339)
		}
		out = append(out, me)
	}
	return out
}

func components(rows []cmd.ButtonRow) []discordgo.MessageComponent {
	if len(rows) == 0 {
		return nil
	}
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		ar := discordgo.ActionsRow{}
		for _, b := range row {
			btn := discordgo.Button{Label: b.Label, Disabled: b.Disabled}
			switch b.Style {
			case cmd.ButtonLink:
				btn.Style = discordgo.LinkButton
				btn.URL = b.URL
			case cmd.ButtonPrimary:
				btn.Style = discordgo.PrimaryButton
				btn.CustomID = b.ID
			case cmd.ButtonDanger:
				btn.Style = discordgo.DangerButton
				btn.CustomID = b.ID
			default:
				btn.Style = discordgo.SecondaryButton
				btn.CustomID = b.ID
			}
			ar.Components = append(ar.Components, btn)
		}
		out = append(out, ar)
	}
	return out
}

func files(in []cmd.File) []*discordgo.File {
	if len(in) == 0 {
		return nil
	}
	out := make([]*discordgo.File, 0, len(in))
	for _, f := range in {
		out = append(out, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return out
}
