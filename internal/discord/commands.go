package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/keshon/nvbot/pkg/cmd"
)

// ApplicationCommand declares a definition as a chat input command.
func ApplicationCommand(def cmd.Definition) *discordgo.ApplicationCommand {
	ac := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        def.Name,
		Description: def.Description,
	}
	for _, o := range def.Options {
		ac.Options = append(ac.Options, applicationOption(o))
	}
	return ac
}

func applicationOption(o cmd.Option) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        optionType(o.Type),
		Name:        o.Name,
		Description: o.Description,
		Required:    o.Required,
		MaxLength:   o.MaxLength,
		MinValue:    o.MinValue,
	}
	if o.MinLength > 0 {
		minLen := o.MinLength
		opt.MinLength = &minLen
	}
	if o.MaxValue != nil {
		opt.MaxValue = *o.MaxValue
	}
	for _, ch := range o.Choices {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: ch.Name, Value: ch.Value})
	}
	return opt
}

func optionType(t cmd.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case cmd.OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case cmd.OptionBoolean:
		return discordgo.ApplicationCommandOptionBoolean
	case cmd.OptionUser:
		return discordgo.ApplicationCommandOptionUser
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// commandREST is the part of *discordgo.Session used for registration.
type commandREST interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// Registrar syncs local definitions with Discord: obsolete commands are
// deleted, new or changed ones created, unchanged ones left alone.
type Registrar struct {
	rest    commandREST
	cache   *CommandCache
	limiter *rate.Limiter
	log     zerolog.Logger
}

type SyncResult struct {
	Created   []string
	Deleted   []string
	Unchanged []string
	Failed    []string
}

func NewRegistrar(rest commandREST, cache *CommandCache, log zerolog.Logger) *Registrar {
	return &Registrar{
		rest:    rest,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(40), 1),
		log:     log,
	}
}

// Sync registers defs for guildID, or globally when guildID is empty.
func (r *Registrar) Sync(ctx context.Context, appID, guildID string, defs []cmd.Definition) (*SyncResult, error) {
	scope := guildID
	if scope == "" {
		scope = globalScope
	}
	log := r.log.With().Str("scope", scope).Logger()

	remote, err := r.rest.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := make(map[string]*discordgo.ApplicationCommand, len(defs))
	var order []string
	for _, d := range defs {
		local[d.Name] = ApplicationCommand(d)
		order = append(order, d.Name)
	}

	hashes := r.cache.Load(scope)
	res := &SyncResult{}

	for name, rc := range remoteByName {
		if _, ok := local[name]; ok {
			continue
		}
		if err := r.wait(ctx); err != nil {
			return res, err
		}
		if err := r.rest.ApplicationCommandDelete(appID, guildID, rc.ID, discordgo.WithContext(ctx)); err != nil {
			log.Error().Err(err).Msgf("Failed to delete %s", name)
			res.Failed = append(res.Failed, name)
			continue
		}
		delete(hashes, name)
		res.Deleted = append(res.Deleted, name)
		log.Info().Msgf("Deleted obsolete command: %s", name)
	}

	for _, name := range order {
		ac := local[name]
		h := hashCommand(ac)
		if _, registered := remoteByName[name]; registered && hashes[name] == h {
			res.Unchanged = append(res.Unchanged, name)
			continue
		}
		if err := r.wait(ctx); err != nil {
			return res, err
		}
		if _, err := r.rest.ApplicationCommandCreate(appID, guildID, ac, discordgo.WithContext(ctx)); err != nil {
			log.Error().Err(err).Msgf("Can't create command %s", name)
			res.Failed = append(res.Failed, name)
			continue
		}
		hashes[name] = h
		res.Created = append(res.Created, name)
		log.Info().Msgf("Command registered: %s", name)
	}

	if err := r.cache.Save(scope, hashes); err != nil {
		log.Warn().Err(err).Msg("Failed to save command cache")
	}
	log.Info().
		Int("created", len(res.Created)).
		Int("deleted", len(res.Deleted)).
		Int("unchanged", len(res.Unchanged)).
		Int("failed", len(res.Failed)).
		Msg("Slash commands synced")
	return res, nil
}

func (r *Registrar) wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
