package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/nvbot/internal/command"
	"github.com/keshon/nvbot/internal/command/search"
	"github.com/keshon/nvbot/internal/command/utility"
	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/internal/discord"
	"github.com/keshon/nvbot/internal/docs"
	"github.com/keshon/nvbot/internal/logging"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/internal/paginate"
	v "github.com/keshon/nvbot/internal/version"
	"github.com/keshon/nvbot/pkg/cmd"
)

var (
	logLevel string

	deployGuild string
	deployForce bool

	readmeTemplate string
	readmeOut      string
)

var rootCmd = &cobra.Command{
	Use:          "nvbot-cli",
	Short:        v.AppName + " maintenance commands",
	Long:         v.AppDescription + ".\nDeploys slash commands and regenerates docs without starting the gateway.",
	Version:      v.Release(),
	SilenceUsage: true,
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Register slash commands with Discord",
	Long: `Syncs local command definitions with Discord: obsolete commands are
deleted, new or changed ones created. Registers globally unless a guild is
given by --guild or DISCORD_GUILD_ID.`,
	RunE: runDeploy,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the command catalog grouped by category",
	RunE: func(c *cobra.Command, _ []string) error {
		_, sections := catalog(newLogger())
		for _, s := range sections {
			fmt.Fprintf(c.OutOrStdout(), "%s\n", s.Title())
			for _, d := range s.Commands {
				cooldown := "-"
				if d.Cooldown > 0 {
					cooldown = d.Cooldown.String()
				}
				fmt.Fprintf(c.OutOrStdout(), "  /%-14s %-6s %s\n", d.Name, cooldown, d.Description)
			}
		}
		return nil
	},
}

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Regenerate README.md command sections from the template",
	RunE: func(_ *cobra.Command, _ []string) error {
		log := newLogger()
		_, sections := catalog(log)
		return docs.UpdateReadme(readmeTemplate, readmeOut, sections, log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	deployCmd.Flags().StringVar(&deployGuild, "guild", "", "Guild ID to register into (overrides DISCORD_GUILD_ID)")
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "Ignore the hash cache and re-register every command")

	readmeCmd.Flags().StringVar(&readmeTemplate, "template", "README.md.tmpl", "Template path")
	readmeCmd.Flags().StringVar(&readmeOut, "out", "README.md", "Output path")

	rootCmd.AddCommand(deployCmd, listCmd, readmeCmd)
}

func newLogger() zerolog.Logger {
	root, _ := logging.New(logging.Options{Level: logLevel})
	return logging.For(root, "cli")
}

func runDeploy(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger()
	if cfg.DiscordClientID == "" {
		return fmt.Errorf("DISCORD_CLIENT_ID is required to deploy without a gateway session")
	}
	guild := cfg.DiscordGuildID
	if deployGuild != "" {
		guild = deployGuild
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	cache := discord.NewCommandCache(cfg.CommandCacheDir)
	if deployForce {
		if err := cache.Reset(guild); err != nil {
			return fmt.Errorf("reset command cache: %w", err)
		}
	}

	reg, _ := catalog(log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := discord.NewRegistrar(dg, cache, log).Sync(ctx, cfg.DiscordClientID, guild, reg.List())
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("failed to register: %s", strings.Join(res.Failed, ", "))
	}
	return nil
}

// offline stands in for the gateway when commands are only declared.
type offline struct{}

func (offline) Latency() time.Duration { return 0 }

// catalog loads the full manifest the same way the bot does.
func catalog(log zerolog.Logger) (*cmd.Registry, []docs.Section) {
	opts := paginate.ManagerConfig{Size: 1, TTL: time.Minute, Log: log}
	videos, _ := paginate.NewManager[search.Result](opts)
	links, _ := paginate.NewManager[utility.Link](opts)

	reg := cmd.NewRegistry()
	cat := command.Load(command.Deps{
		API:       nvapi.New(nvapi.Options{Log: log}),
		Videos:    videos,
		Links:     links,
		Gateway:   offline{},
		StartedAt: time.Now(),
		Log:       log,
	}, reg)
	return reg, docs.Sections(reg.List(), cat.CategoryOf)
}
