package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/nvbot/pkg/cmd"
)

// Bits named differently, or not at all, across discordgo releases.
const (
	permissionManageGuild            int64 = 1 << 5
	permissionManageGuildExpressions int64 = 1 << 30
	permissionUseEmbeddedActivities  int64 = 1 << 39
)

// PermissionNames maps Discord permission bits to their UI names.
var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:  "Create Instant Invite",
	discordgo.PermissionKickMembers:          "Kick Members",
	discordgo.PermissionBanMembers:           "Ban Members",
	discordgo.PermissionAdministrator:        "Administrator",
	discordgo.PermissionManageChannels:       "Manage Channels",
	permissionManageGuild:                    "Manage Server",
	discordgo.PermissionAddReactions:         "Add Reactions",
	discordgo.PermissionViewAuditLogs:        "View Audit Logs",
	discordgo.PermissionViewChannel:          "View Channel",
	discordgo.PermissionSendMessages:         "Send Messages",
	discordgo.PermissionSendTTSMessages:      "Send TTS Messages",
	discordgo.PermissionManageMessages:       "Manage Messages",
	discordgo.PermissionEmbedLinks:           "Embed Links",
	discordgo.PermissionAttachFiles:          "Attach Files",
	discordgo.PermissionReadMessageHistory:   "Read Message History",
	discordgo.PermissionMentionEveryone:      "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:    "Use External Emojis",
	discordgo.PermissionManageThreads:        "Manage Threads",
	discordgo.PermissionVoicePrioritySpeaker: "Priority Speaker",
	discordgo.PermissionVoiceStreamVideo:     "Stream Video",
	discordgo.PermissionVoiceConnect:         "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:           "Speak",
	discordgo.PermissionVoiceMuteMembers:     "Mute Members",
	discordgo.PermissionVoiceDeafenMembers:   "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:     "Move Members",
	discordgo.PermissionVoiceUseVAD:          "Use Voice Activity Detection",
	discordgo.PermissionChangeNickname:       "Change Nickname",
	discordgo.PermissionManageNicknames:      "Manage Nicknames",
	discordgo.PermissionManageRoles:          "Manage Roles",
	discordgo.PermissionManageWebhooks:       "Manage Webhooks",
	discordgo.PermissionViewGuildInsights:    "View Guild Insights",
	discordgo.PermissionModerateMembers:      "Moderate Members",
	permissionManageGuildExpressions:         "Manage Expressions",
	permissionUseEmbeddedActivities:          "Use Embedded Activities",
}

// PermissionName is the dispatcher's namer for missing-permission replies.
func PermissionName(p cmd.Permission) string {
	if name, ok := PermissionNames[int64(p)]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", int64(p))
}

// effectivePermissions expands the administrator bit to every permission,
// matching how Discord evaluates administrators.
func effectivePermissions(p int64) cmd.Permission {
	if p&discordgo.PermissionAdministrator != 0 {
		return cmd.Permission(^uint64(0) >> 1)
	}
	return cmd.Permission(p)
}
