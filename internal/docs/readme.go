package docs

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/pkg/cmd"
)

// Section is one category worth of commands, sorted by name.
type Section struct {
	Category string
	Commands []cmd.Definition
}

// Title renders the category heading, e.g. "🔧 Utility".
func (s Section) Title() string {
	return config.CategoryEmoji(s.Category) + " " + config.CategoryTitle(s.Category)
}

// Sections groups definitions by category. Categories are ordered by weight
// then name; commands inside a category by name.
func Sections(defs []cmd.Definition, categoryOf func(name string) string) []Section {
	byCategory := make(map[string][]cmd.Definition)
	for _, d := range defs {
		c := categoryOf(d.Name)
		byCategory[c] = append(byCategory[c], d)
	}

	sections := make([]Section, 0, len(byCategory))
	for c, list := range byCategory {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		sections = append(sections, Section{Category: c, Commands: list})
	}
	sort.Slice(sections, func(i, j int) bool {
		wi, wj := config.CategoryWeight(sections[i].Category), config.CategoryWeight(sections[j].Category)
		if wi == wj {
			return sections[i].Category < sections[j].Category
		}
		return wi < wj
	})
	return sections
}

// CommandSections renders sections as markdown lists.
func CommandSections(sections []Section) string {
	var buf bytes.Buffer
	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", s.Title())
		for _, c := range s.Commands {
			fmt.Fprintf(&buf, "- **/%s** - %s\n", c.Name, c.Description)
		}
	}
	return buf.String()
}

// UpdateReadme renders outPath from the template at tmplPath. The template
// receives CommandSections and Total.
func UpdateReadme(tmplPath, outPath string, sections []Section, log zerolog.Logger) error {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return err
	}

	total := 0
	for _, s := range sections {
		total += len(s.Commands)
	}
	data := struct {
		CommandSections string
		Total           int
	}{
		CommandSections: CommandSections(sections),
		Total:           total,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return err
	}

	log.Info().Str("path", outPath).Int("commands", total).Msg("README updated with current commands")
	return nil
}
