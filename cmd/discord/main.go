package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/keshon/nvbot/internal/command"
	"github.com/keshon/nvbot/internal/command/search"
	"github.com/keshon/nvbot/internal/command/utility"
	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/internal/cooldown"
	"github.com/keshon/nvbot/internal/discord"
	"github.com/keshon/nvbot/internal/dispatch"
	"github.com/keshon/nvbot/internal/docs"
	"github.com/keshon/nvbot/internal/logging"
	"github.com/keshon/nvbot/internal/metrics"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/internal/paginate"
	"github.com/keshon/nvbot/internal/statusserver"
	v "github.com/keshon/nvbot/internal/version"
	"github.com/keshon/nvbot/pkg/cmd"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		boot := logging.For(zerolog.New(logging.NewConsoleWriter(os.Stderr)), logging.DefaultService)
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	root, closer := logging.New(logging.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
	defer closer.Close()
	log := logging.For(root, logging.DefaultService)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Uncaught panic, exiting")
			closer.Close()
			os.Exit(1)
		}
	}()

	log.Info().Str("release", v.Release()).Msgf("Starting %s...", v.AppName)

	if err := run(cfg, root, startedAt); err != nil {
		log.Error().Err(err).Msg("Bot stopped with error")
		closer.Close()
		os.Exit(1)
	}
	log.Info().Msg("Discord bot exited cleanly")
}

func run(cfg *config.Config, root zerolog.Logger, startedAt time.Time) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	api := nvapi.New(nvapi.Options{
		BaseURL:      cfg.NVAPIBaseURL,
		ShortBaseURL: cfg.ShortURLBase,
		Timeout:      cfg.NVAPITimeout,
		Rate:         cfg.NVAPIRate,
		Metrics:      m,
		Log:          logging.For(root, "nvapi"),
	})

	sessions := paginate.ManagerConfig{
		Size:    cfg.PaginationMaxSessions,
		TTL:     cfg.PaginationTTL,
		Metrics: m,
		Log:     logging.For(root, "paginate"),
	}
	videos, err := paginate.NewManager[search.Result](sessions)
	if err != nil {
		return err
	}
	links, err := paginate.NewManager[utility.Link](sessions)
	if err != nil {
		return err
	}
	defer videos.CloseAll()
	defer links.CloseAll()

	tracker := cooldown.New(clock.RealClock{}, logging.For(root, "cooldown"))
	registry := cmd.NewRegistry()
	dispatcher := dispatch.New(registry, tracker, logging.For(root, "dispatch"),
		dispatch.WithMetrics(m),
		dispatch.WithPermissionNames(discord.PermissionName),
	)

	bot, err := discord.NewBot(cfg, registry, dispatcher, logging.For(root, "discord"))
	if err != nil {
		return err
	}

	catalog := command.Load(command.Deps{
		API:       api,
		Videos:    videos,
		Links:     links,
		Gateway:   bot,
		StartedAt: startedAt,
		Log:       root,
	}, registry)

	status := statusserver.New(cfg.StatusAddr, promReg, bot, func() []docs.Section {
		return docs.Sections(registry.List(), catalog.CategoryOf)
	}, logging.For(root, "status"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return status.Run(gctx) })
	g.Go(func() error { return tracker.Run(gctx, cfg.CooldownSweepInterval) })
	return g.Wait()
}
