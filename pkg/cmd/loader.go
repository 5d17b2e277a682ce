package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Entry produces one definition. Entries must be pure: no network, no
// goroutines; anything they need is captured when the manifest is built.
type Entry func() (Definition, error)

// Category groups entries for display. The name never ends up on the
// definition itself.
type Category struct {
	Name    string
	Entries []Entry
}

// Skip records an entry that failed to load.
type Skip struct {
	Category string
	Index    int
	Command  string
	Err      error
}

// Catalog is what Load reports back: where each command came from and what
// was skipped.
type Catalog struct {
	categories []string
	byCommand  map[string]string
	Skipped    []Skip
}

// CategoryOf returns the category a command was loaded from.
func (c *Catalog) CategoryOf(name string) string {
	return c.byCommand[name]
}

// Categories returns category names in manifest order, including empty ones.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Load walks the manifest and registers every entry it can. A failing entry
// (error, panic, rejected registration) is logged and skipped; loading always
// continues with the rest.
func Load(manifest []Category, reg *Registry, log zerolog.Logger) *Catalog {
	cat := &Catalog{byCommand: make(map[string]string)}

	for _, c := range manifest {
		cat.categories = append(cat.categories, c.Name)
		for i, entry := range c.Entries {
			def, err := build(entry)
			if err == nil {
				err = reg.Register(def)
			}
			if err != nil {
				cat.Skipped = append(cat.Skipped, Skip{Category: c.Name, Index: i, Command: def.Name, Err: err})
				log.Error().Err(err).
					Str("category", c.Name).
					Int("entry", i).
					Msgf("Failed to load command %s", displayName(def.Name, i))
				continue
			}
			cat.byCommand[def.Name] = c.Name
			log.Info().Str("category", c.Name).Msgf("Loaded command: %s", def.Name)
		}
	}

	log.Info().
		Int("total", reg.Len()).
		Int("skipped", len(cat.Skipped)).
		Strs("categories", cat.categories).
		Msg("Commands loaded")
	return cat
}

func build(entry Entry) (def Definition, err error) {
	if entry == nil {
		return Definition{}, fmt.Errorf("nil entry")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while building command: %v", r)
		}
	}()
	return entry()
}

func displayName(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("#%d", idx)
	}
	return name
}
