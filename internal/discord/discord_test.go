package discord

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/nvbot/pkg/cmd"
)

func TestApplicationCommand(t *testing.T) {
	ac := ApplicationCommand(cmd.Definition{
		Name:        "yts",
		Description: "Search YouTube",
		Options: []cmd.Option{
			{Name: "query", Description: "What to search", Type: cmd.OptionString, Required: true, MinLength: 2, MaxLength: 100},
			{Name: "limit", Description: "How many", Type: cmd.OptionInteger, MinValue: cmd.Limit(1), MaxValue: cmd.Limit(10)},
			{Name: "sub", Description: "Subreddit", Type: cmd.OptionString, Choices: []cmd.Choice{{Name: "memes", Value: "memes"}}},
		},
	})

	assert.Equal(t, discordgo.ChatApplicationCommand, ac.Type)
	require.Len(t, ac.Options, 3)

	q := ac.Options[0]
	assert.Equal(t, discordgo.ApplicationCommandOptionString, q.Type)
	assert.True(t, q.Required)
	require.NotNil(t, q.MinLength)
	assert.Equal(t, 2, *q.MinLength)
	assert.Equal(t, 100, q.MaxLength)

	l := ac.Options[1]
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, l.Type)
	require.NotNil(t, l.MinValue)
	assert.Equal(t, 1.0, *l.MinValue)
	assert.Equal(t, 10.0, l.MaxValue)
	assert.Nil(t, l.MinLength)

	require.Len(t, ac.Options[2].Choices, 1)
	assert.Equal(t, "memes", ac.Options[2].Choices[0].Value)
}

func TestHashCommand(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "x", Description: "d", Options: []*discordgo.ApplicationCommandOption{
		{Name: "a", Type: discordgo.ApplicationCommandOptionString},
		{Name: "b", Type: discordgo.ApplicationCommandOptionInteger},
	}}
	b := &discordgo.ApplicationCommand{Name: "x", Description: "d", Options: []*discordgo.ApplicationCommandOption{
		{Name: "b", Type: discordgo.ApplicationCommandOptionInteger},
		{Name: "a", Type: discordgo.ApplicationCommandOptionString},
	}}
	assert.Equal(t, hashCommand(a), hashCommand(b))

	b.Description = "changed"
	assert.NotEqual(t, hashCommand(a), hashCommand(b))
}

func TestCommandCache(t *testing.T) {
	dir := t.TempDir()
	c := NewCommandCache(filepath.Join(dir, "commands"))

	assert.Empty(t, c.Load("123"))

	require.NoError(t, c.Save("123", map[string]string{"ping": "abc"}))
	assert.Equal(t, map[string]string{"ping": "abc"}, c.Load("123"))
	assert.Empty(t, c.Load(""))

	require.NoError(t, c.Save("", map[string]string{"yts": "def"}))
	assert.FileExists(t, filepath.Join(dir, "commands", "global.json"))

	require.NoError(t, c.Reset("123"))
	require.NoError(t, c.Reset("123"))
	assert.Empty(t, c.Load("123"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "commands", "bad.json"), []byte("{"), 0o644))
	assert.Empty(t, c.Load("bad"))
}

type fakeCommands struct {
	remote  []*discordgo.ApplicationCommand
	created []string
	deleted []string
}

func (f *fakeCommands) ApplicationCommands(appID, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, nil
}

func (f *fakeCommands) ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.created = append(f.created, c.Name)
	return c, nil
}

func (f *fakeCommands) ApplicationCommandDelete(appID, guildID, cmdID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, cmdID)
	return nil
}

func TestRegistrarSync(t *testing.T) {
	ping := cmd.Definition{Name: "ping", Description: "Pong"}
	yts := cmd.Definition{Name: "yts", Description: "Search"}
	memes := cmd.Definition{Name: "meme", Description: "Meme"}

	cache := NewCommandCache(t.TempDir())
	require.NoError(t, cache.Save("42", map[string]string{
		"ping": hashCommand(ApplicationCommand(ping)),
		"meme": hashCommand(ApplicationCommand(memes)),
	}))

	rest := &fakeCommands{remote: []*discordgo.ApplicationCommand{
		{ID: "1", Name: "old"},
		{ID: "2", Name: "ping"},
	}}
	r := NewRegistrar(rest, cache, zerolog.Nop())

	res, err := r.Sync(context.Background(), "app", "42", []cmd.Definition{ping, yts, memes})
	require.NoError(t, err)

	assert.Equal(t, []string{"old"}, res.Deleted)
	assert.Equal(t, []string{"ping"}, res.Unchanged)
	// meme is cached but missing remotely, so it is created again.
	assert.Equal(t, []string{"yts", "meme"}, res.Created)
	assert.Equal(t, []string{"1"}, rest.deleted)

	hashes := cache.Load("42")
	assert.Len(t, hashes, 3)
	assert.NotContains(t, hashes, "old")
}

type call struct {
	kind string
	typ  discordgo.InteractionResponseType
	data *discordgo.InteractionResponseData
	edit *discordgo.WebhookEdit
	msg  *discordgo.WebhookParams
}

type fakeResponder struct {
	calls []call
}

func (f *fakeResponder) InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.calls = append(f.calls, call{kind: "respond", typ: r.Type, data: r.Data})
	return nil
}

func (f *fakeResponder) InteractionResponseEdit(i *discordgo.Interaction, e *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, call{kind: "edit", edit: e})
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) FollowupMessageCreate(i *discordgo.Interaction, wait bool, p *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, call{kind: "followup", msg: p})
	return &discordgo.Message{}, nil
}

func TestInteractionSequencing(t *testing.T) {
	ctx := context.Background()
	rest := &fakeResponder{}
	r := newInteraction(rest, &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand})

	assert.ErrorIs(t, r.EditReply(ctx, cmd.Text("x", false)), cmd.ErrNotResponded)
	assert.ErrorIs(t, r.FollowUp(ctx, cmd.Text("x", false)), cmd.ErrNotResponded)

	require.NoError(t, r.Acknowledge(ctx, true))
	assert.True(t, r.Responded())
	assert.ErrorIs(t, r.Reply(ctx, cmd.Text("x", false)), cmd.ErrAlreadyResponded)
	assert.ErrorIs(t, r.Acknowledge(ctx, false), cmd.ErrAlreadyResponded)

	require.NoError(t, r.EditReply(ctx, cmd.Text("done", false)))
	require.NoError(t, r.FollowUp(ctx, &cmd.Response{Content: "more", Ephemeral: true}))

	require.Len(t, rest.calls, 3)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, rest.calls[0].typ)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, rest.calls[0].data.Flags)
	assert.Equal(t, "done", *rest.calls[1].edit.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, rest.calls[2].msg.Flags)
}

func TestComponentAcknowledgeDefersUpdate(t *testing.T) {
	rest := &fakeResponder{}
	r := newInteraction(rest, &discordgo.Interaction{Type: discordgo.InteractionMessageComponent})

	require.NoError(t, r.Acknowledge(context.Background(), false))
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, rest.calls[0].typ)
}

func TestWebhookEdit(t *testing.T) {
	e := webhookEdit(&cmd.Response{ClearComponents: true})
	assert.Nil(t, e.Content)
	require.NotNil(t, e.Components)
	assert.Empty(t, *e.Components)

	e = webhookEdit(&cmd.Response{Embeds: []cmd.Embed{{Title: "t"}}})
	require.NotNil(t, e.Content)
	assert.Empty(t, *e.Content)
	require.NotNil(t, e.Embeds)
	assert.Nil(t, e.Components)
}

func TestConvertEmbedAndButtons(t *testing.T) {
	data := responseData(&cmd.Response{
		Embeds: []cmd.Embed{{
			Title:     "Video",
			Author:    "Channel",
			Image:     "https://img",
			Footer:    "Result 1/3",
			Fields:    []cmd.EmbedField{{Name: "⏱️ Duration", Value: "3:00", Inline: true}},
			Timestamp: true,
		}},
		Components: []cmd.ButtonRow{{
			{ID: "yts:1:prev", Label: "◀️ Previous", Disabled: true},
			{Label: "🎥 Watch", URL: "https://youtu.be/x", Style: cmd.ButtonLink},
			{ID: "yts:1:all", Label: "📋 All Results", Style: cmd.ButtonPrimary},
			{ID: "short-url:1:delete", Label: "Delete", Style: cmd.ButtonDanger},
		}},
		Ephemeral: true,
	})

	require.Len(t, data.Embeds, 1)
	em := data.Embeds[0]
	assert.Equal(t, "Channel", em.Author.Name)
	assert.Equal(t, "https://img", em.Image.URL)
	assert.NotEmpty(t, em.Timestamp)
	assert.True(t, em.Fields[0].Inline)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)

	require.Len(t, data.Components, 1)
	row := data.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 4)
	prev := row.Components[0].(discordgo.Button)
	assert.Equal(t, discordgo.SecondaryButton, prev.Style)
	assert.True(t, prev.Disabled)
	watch := row.Components[1].(discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, watch.Style)
	assert.Empty(t, watch.CustomID)
	assert.Equal(t, "https://youtu.be/x", watch.URL)
	assert.Equal(t, discordgo.PrimaryButton, row.Components[2].(discordgo.Button).Style)
	del := row.Components[3].(discordgo.Button)
	assert.Equal(t, discordgo.DangerButton, del.Style)
	assert.Equal(t, "short-url:1:delete", del.CustomID)
}

func TestParams(t *testing.T) {
	p := params([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "lofi"},
		{Name: "limit", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(5)},
		{Name: "nsfw", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	})
	assert.Equal(t, "lofi", p.String("query", ""))
	assert.Equal(t, 5, p.Int("limit", 0))
	assert.True(t, p.Bool("nsfw", false))
}

func TestPrincipalOf(t *testing.T) {
	member := &discordgo.Interaction{Member: &discordgo.Member{
		User:        &discordgo.User{ID: "1", Username: "ann"},
		Permissions: discordgo.PermissionBanMembers,
	}}
	p := principalOf(member, "")
	assert.Equal(t, "ann", p.Username)
	assert.True(t, p.Has(cmd.Permission(discordgo.PermissionBanMembers)))
	assert.False(t, p.Has(cmd.Permission(discordgo.PermissionKickMembers)))

	admin := &discordgo.Interaction{Member: &discordgo.Member{
		User:        &discordgo.User{ID: "2"},
		Permissions: discordgo.PermissionAdministrator,
	}}
	assert.True(t, principalOf(admin, "").Has(cmd.Permission(discordgo.PermissionKickMembers)))

	dm := &discordgo.Interaction{User: &discordgo.User{ID: "3", Username: "dev"}}
	assert.Zero(t, principalOf(dm, "").Permissions)
	assert.True(t, principalOf(dm, "3").Has(cmd.Permission(discordgo.PermissionBanMembers)))

	assert.Empty(t, principalOf(&discordgo.Interaction{}, "").ID)
}

func TestOriginOf(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g1", Name: "Lounge"}))

	assert.Equal(t, "Lounge", originOf(state, &discordgo.Interaction{GuildID: "g1"}).String())
	assert.Equal(t, "g2", originOf(state, &discordgo.Interaction{GuildID: "g2"}).String())
	assert.Equal(t, "DM", originOf(state, &discordgo.Interaction{}).String())
}

func TestPermissionName(t *testing.T) {
	assert.Equal(t, "Ban Members", PermissionName(cmd.Permission(discordgo.PermissionBanMembers)))
	assert.Equal(t, "Manage Server", PermissionName(cmd.Permission(1<<5)))
	assert.Equal(t, "0x1000000000000", PermissionName(cmd.Permission(1<<48)))
}

func TestComponentCommand(t *testing.T) {
	assert.Equal(t, "yts", componentCommand("yts:abc:next"))
	assert.Equal(t, "short-url", componentCommand("short-url:stats:x"))
	assert.Equal(t, "plain", componentCommand("plain"))
}

func TestReportComponentFailure(t *testing.T) {
	rest := &fakeResponder{}
	r := newInteraction(rest, &discordgo.Interaction{Type: discordgo.InteractionMessageComponent})
	require.NoError(t, r.Acknowledge(context.Background(), false))

	reportComponentFailure(context.Background(), zerolog.Nop(), r)

	require.Len(t, rest.calls, 2)
	assert.Equal(t, "followup", rest.calls[1].kind)
	assert.Equal(t, msgComponentFailure, rest.calls[1].msg.Content)
}
