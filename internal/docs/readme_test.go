package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/nvbot/internal/config"
	"github.com/keshon/nvbot/pkg/cmd"
)

func fixture() ([]cmd.Definition, func(string) string) {
	defs := []cmd.Definition{
		{Name: "yts", Description: "Search YouTube"},
		{Name: "ping", Description: "Check latency"},
		{Name: "cmdlist", Description: "List commands"},
		{Name: "meme", Description: "Random meme"},
	}
	cats := map[string]string{
		"yts":     config.CategorySearch,
		"ping":    config.CategoryUtility,
		"cmdlist": config.CategoryUtility,
		"meme":    config.CategoryFun,
	}
	return defs, func(n string) string { return cats[n] }
}

func TestSectionsOrdering(t *testing.T) {
	defs, categoryOf := fixture()
	sections := Sections(defs, categoryOf)

	require.Len(t, sections, 3)
	assert.Equal(t, config.CategoryUtility, sections[0].Category)
	assert.Equal(t, "cmdlist", sections[0].Commands[0].Name)
	assert.Equal(t, "ping", sections[0].Commands[1].Name)
	for i := 1; i < len(sections); i++ {
		assert.LessOrEqual(t, config.CategoryWeight(sections[i-1].Category), config.CategoryWeight(sections[i].Category))
	}
}

func TestCommandSections(t *testing.T) {
	defs, categoryOf := fixture()
	out := CommandSections(Sections(defs, categoryOf))

	assert.Contains(t, out, "### 🔧 Utility\n\n- **/cmdlist** - List commands\n- **/ping** - Check latency\n")
	assert.Contains(t, out, "- **/yts** - Search YouTube")
}

func TestUpdateReadme(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "README.md.tmpl")
	out := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(tmpl, []byte("# Bot\n\n{{.Total}} commands\n\n{{.CommandSections}}"), 0o644))

	defs, categoryOf := fixture()
	require.NoError(t, UpdateReadme(tmpl, out, Sections(defs, categoryOf), zerolog.Nop()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "4 commands")
	assert.Contains(t, string(data), "- **/meme** - Random meme")
}

func TestUpdateReadmeMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	err := UpdateReadme(filepath.Join(dir, "nope.tmpl"), filepath.Join(dir, "README.md"), nil, zerolog.Nop())
	assert.Error(t, err)
}
