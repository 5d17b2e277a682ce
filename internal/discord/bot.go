package discord

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/internal/dispatch"
	"github.com/keshon/nvbot/pkg/cmd"
)

// interactionTimeout bounds one invocation; Discord interaction tokens stay
// valid for 15 minutes.
const interactionTimeout = 14 * time.Minute

const listeningStatus = "your commands"

// Bot connects the dispatcher to a Discord gateway session.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	registry   *cmd.Registry
	dispatcher *dispatch.Dispatcher
	registrar  *Registrar
	log        zerolog.Logger

	ctx       context.Context
	startedAt time.Time
	ready     atomic.Bool
}

func NewBot(cfg *config.Config, reg *cmd.Registry, d *dispatch.Dispatcher, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		dg:         dg,
		cfg:        cfg,
		registry:   reg,
		dispatcher: d,
		registrar:  NewRegistrar(dg, NewCommandCache(cfg.CommandCacheDir), log),
		log:        log,
		ctx:        context.Background(),
		startedAt:  time.Now(),
	}, nil
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.ready.Store(false)
	b.log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close Discord session: %w", err)
	}
	return nil
}

// Ready reports whether the gateway session is up.
func (b *Bot) Ready() bool { return b.ready.Load() }

// Latency is the last gateway heartbeat round trip.
func (b *Bot) Latency() time.Duration { return b.dg.HeartbeatLatency() }

func (b *Bot) StartedAt() time.Time { return b.startedAt }

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	defer recoverEvent(b.log, "ready")
	b.ready.Store(true)

	if err := s.UpdateListeningStatus(listeningStatus); err != nil {
		b.log.Warn().Err(err).Msg("Failed to set presence")
	}
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Int("commands", b.registry.Len()).
		Msgf("✅ Discord bot %s is running.", r.User.Username)

	if !b.cfg.RegisterCommands {
		b.log.Info().Msg("Registering slash commands skipped")
		return
	}
	appID := b.cfg.DiscordClientID
	if appID == "" {
		appID = r.User.ID
	}
	if _, err := b.registrar.Sync(b.ctx, appID, b.cfg.DiscordGuildID, b.registry.List()); err != nil {
		b.log.Error().Err(err).Msg("Error registering slash commands")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	defer recoverEvent(b.log, "interaction")

	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		data := ic.ApplicationCommandData()
		if data.CommandType != discordgo.ChatApplicationCommand {
			return
		}
		b.dispatcher.Dispatch(ctx, &cmd.Invocation{
			Command:    data.Name,
			Principal:  principalOf(ic.Interaction, b.cfg.DeveloperID),
			Origin:     originOf(s.State, ic.Interaction),
			Params:     params(data.Options),
			Reply:      newInteraction(s, ic.Interaction),
			ReceivedAt: time.Now(),
		})

	case discordgo.InteractionMessageComponent:
		customID := ic.MessageComponentData().CustomID
		ev := &cmd.ComponentEvent{
			CustomID:  customID,
			Principal: principalOf(ic.Interaction, b.cfg.DeveloperID),
			Origin:    originOf(s.State, ic.Interaction),
			Reply:     newInteraction(s, ic.Interaction),
		}
		err := b.dispatcher.DispatchComponent(ctx, componentCommand(customID), ev)
		var hee *cmd.HandlerExecutionError
		if errors.As(err, &hee) {
			reportComponentFailure(ctx, b.log, ev.Reply)
		}

	default:
		b.log.Debug().Msgf("Unknown interaction type: %d", ic.Type)
	}
}
