package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const globalScope = "global"

// CommandCache stores registered command hashes per scope (guild ID or
// "global") as one JSON file each.
type CommandCache struct {
	dir string
}

func NewCommandCache(dir string) *CommandCache {
	return &CommandCache{dir: dir}
}

func (c *CommandCache) path(scope string) string {
	if scope == "" {
		scope = globalScope
	}
	return filepath.Join(c.dir, scope+".json")
}

// Load returns the cached hashes; a missing or corrupt file is an empty cache.
func (c *CommandCache) Load(scope string) map[string]string {
	out := make(map[string]string)
	data, err := os.ReadFile(c.path(scope))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]string)
	}
	return out
}

func (c *CommandCache) Save(scope string, hashes map[string]string) error {
	path := c.path(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Reset forgets a scope, forcing a full re-registration next time.
func (c *CommandCache) Reset(scope string) error {
	err := os.Remove(c.path(scope))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
