package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"DISCORD_TOKEN": "tok"})
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.DiscordToken)
	assert.True(t, cfg.RegisterCommands)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "https://nvlabs.my.id", cfg.NVAPIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.NVAPITimeout)
	assert.Equal(t, 5.0, cfg.NVAPIRate)
	assert.Equal(t, 5*time.Minute, cfg.PaginationTTL)
	assert.Equal(t, 512, cfg.PaginationMaxSessions)
	assert.Equal(t, time.Minute, cfg.CooldownSweepInterval)
	assert.Equal(t, ":8787", cfg.StatusAddr)
	assert.Equal(t, "data/commands", cfg.CommandCacheDir)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DISCORD_TOKEN":     "tok",
		"DISCORD_GUILD_ID":  "123",
		"REGISTER_COMMANDS": "false",
		"PAGINATION_TTL":    "90s",
		"NVAPI_RATE":        "2.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "123", cfg.DiscordGuildID)
	assert.False(t, cfg.RegisterCommands)
	assert.Equal(t, 90*time.Second, cfg.PaginationTTL)
	assert.Equal(t, 2.5, cfg.NVAPIRate)
}

func TestLoadRequiresToken(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	assert.ErrorContains(t, err, "DISCORD_TOKEN")
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero ttl":      {"DISCORD_TOKEN": "t", "PAGINATION_TTL": "0s"},
		"negative rate": {"DISCORD_TOKEN": "t", "NVAPI_RATE": "-1"},
		"bad duration":  {"DISCORD_TOKEN": "t", "NVAPI_TIMEOUT": "soon"},
		"no sessions":   {"DISCORD_TOKEN": "t", "PAGINATION_MAX_SESSIONS": "0"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(environ)
			assert.Error(t, err)
		})
	}
}

func TestCategoryHelpers(t *testing.T) {
	assert.Equal(t, "🔍", CategoryEmoji(CategorySearch))
	assert.Equal(t, "📁", CategoryEmoji("misc"))
	assert.Less(t, CategoryWeight(CategoryUtility), CategoryWeight(CategoryRandom))
	assert.Equal(t, 1000, CategoryWeight("misc"))
}
