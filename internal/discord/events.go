package discord

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/pkg/cmd"
)

const msgComponentFailure = "❌ There was an error while processing your request!"

// recoverEvent keeps a panicking gateway handler from taking the process down.
func recoverEvent(log zerolog.Logger, event string) {
	if r := recover(); r != nil {
		log.Error().
			Str("event", event).
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("Recovered from panic in event handler")
	}
}

// componentCommand extracts the routing prefix of a custom ID ("yts:abc:next"
// belongs to "yts").
func componentCommand(customID string) string {
	name, _, _ := strings.Cut(customID, ":")
	return name
}

// params flattens slash options into cmd.Params.
func params(opts []*discordgo.ApplicationCommandInteractionDataOption) cmd.Params {
	out := make(cmd.Params, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			out[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionNumber:
			out[o.Name] = o.FloatValue()
		default:
			out[o.Name] = o.Value
		}
	}
	return out
}

// principalOf resolves who triggered an interaction. Guild members carry their
// computed channel permissions; the developer is granted everything.
func principalOf(i *discordgo.Interaction, developerID string) cmd.Principal {
	var (
		u     *discordgo.User
		perms int64
	)
	if i.Member != nil {
		u = i.Member.User
		perms = i.Member.Permissions
	} else {
		u = i.User
	}
	if u == nil {
		return cmd.Principal{}
	}

	p := cmd.Principal{ID: u.ID, Username: u.Username, Permissions: effectivePermissions(perms)}
	if developerID != "" && u.ID == developerID {
		p.Permissions = effectivePermissions(discordgo.PermissionAdministrator)
	}
	return p
}

func originOf(state *discordgo.State, i *discordgo.Interaction) cmd.Origin {
	o := cmd.Origin{GuildID: i.GuildID, ChannelID: i.ChannelID}
	if i.GuildID != "" && state != nil {
		if g, err := state.Guild(i.GuildID); err == nil && g != nil {
			o.GuildName = g.Name
		}
	}
	return o
}

// reportComponentFailure tells the presser something went wrong, without
// touching the original message.
func reportComponentFailure(ctx context.Context, log zerolog.Logger, reply cmd.Interaction) {
	resp := &cmd.Response{Content: msgComponentFailure, Ephemeral: true}
	err := reply.Reply(ctx, resp)
	if errors.Is(err, cmd.ErrAlreadyResponded) {
		err = reply.FollowUp(ctx, resp)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to send component failure reply")
	}
}
