// Package command assembles the bot's command catalog from the per-category
// packages below it.
package command

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/command/ai"
	"github.com/keshon/nvbot/internal/command/fun"
	"github.com/keshon/nvbot/internal/command/random"
	"github.com/keshon/nvbot/internal/command/search"
	"github.com/keshon/nvbot/internal/command/utility"
	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/internal/logging"
	"github.com/keshon/nvbot/internal/middleware"
	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/internal/paginate"
	"github.com/keshon/nvbot/pkg/cmd"
)

// Deps is everything command constructors may capture. CategoryOf and Gateway
// are called lazily, so they may be bound after the manifest is loaded.
type Deps struct {
	API        *nvapi.Client
	Videos     *paginate.Manager[search.Result]
	Links      *paginate.Manager[utility.Link]
	Registry   utility.Lister
	Gateway    utility.Gateway
	CategoryOf func(name string) string
	StartedAt  time.Time
	Log        zerolog.Logger
}

// Manifest lists every command by category. Constructors run inside
// cmd.Load, which skips entries that fail.
func Manifest(d Deps) []cmd.Category {
	log := func(service string) zerolog.Logger { return logging.For(d.Log, service) }

	return wrap([]cmd.Category{
		{Name: config.CategoryAI, Entries: []cmd.Entry{
			func() (cmd.Definition, error) { return ai.NewClaude(d.API, log("claude-ai")) },
			func() (cmd.Definition, error) { return ai.NewImagine(d.API, log("imagine")) },
		}},
		{Name: config.CategoryFun, Entries: []cmd.Entry{
			func() (cmd.Definition, error) { return fun.NewMeme(d.API, log("meme")) },
			func() (cmd.Definition, error) { return fun.NewUstadzQuote(d.API, log("ustadz")) },
		}},
		{Name: config.CategoryRandom, Entries: []cmd.Entry{
			func() (cmd.Definition, error) { return random.NewAnimeQuote(d.API, nil, log("anime-quote")) },
			func() (cmd.Definition, error) { return random.NewRBA(d.API, log("rba")) },
		}},
		{Name: config.CategorySearch, Entries: []cmd.Entry{
			func() (cmd.Definition, error) { return search.NewYTS(d.API, d.Videos, log("yts")) },
		}},
		{Name: config.CategoryUtility, Entries: []cmd.Entry{
			func() (cmd.Definition, error) { return utility.NewCmdList(d.Registry, d.CategoryOf, log("cmdlist")) },
			func() (cmd.Definition, error) {
				return utility.NewPing(d.API, d.Gateway, d.StartedAt, nil, log("ping"))
			},
			func() (cmd.Definition, error) { return utility.NewShortURL(d.API, d.Links, log("short-url")) },
		}},
	}, middleware.WithCommandLogger(log("commands")))
}

func wrap(manifest []cmd.Category, mws ...cmd.Middleware) []cmd.Category {
	for i := range manifest {
		for j, entry := range manifest[i].Entries {
			manifest[i].Entries[j] = cmd.WrapEntry(entry, mws...)
		}
	}
	return manifest
}

// Load registers the manifest into reg, wiring Registry and CategoryOf to the
// result.
func Load(d Deps, reg *cmd.Registry) *cmd.Catalog {
	var catalog *cmd.Catalog
	d.Registry = reg
	d.CategoryOf = func(name string) string { return catalog.CategoryOf(name) }
	catalog = cmd.Load(Manifest(d), reg, logging.For(d.Log, "loader"))
	return catalog
}
