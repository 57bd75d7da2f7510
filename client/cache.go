package client

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hollybrook.dev/keygate/api"
)

// cacheEntry is the single validation result persisted between runs. The
// file holds at most one entry; validating a different key replaces it.
type cacheEntry struct {
	Key       string          `json:"key"`
	MachineID string          `json:"machineId"`
	License   api.LicenseInfo `json:"license"`
	Version   api.VersionInfo `json:"version"`
	CachedAt  time.Time       `json:"cachedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type cache struct {
	path   string
	logger *slog.Logger
}

// load reads the cached entry. A missing, empty or corrupt file is a plain
// miss; the cache never fails a validation.
func (c *cache) load() (*cacheEntry, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("license cache unreadable, discarding", "path", c.path, "error", err)
		return nil, false
	}
	if entry.Key == "" {
		return nil, false
	}
	return &entry, true
}

// store persists an entry best-effort. A read-only disk must not break
// validation, so failures are logged and swallowed.
func (c *cache) store(entry *cacheEntry) {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		c.logger.Warn("license cache encode failed", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.logger.Warn("license cache dir create failed", "path", c.path, "error", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		c.logger.Warn("license cache write failed", "path", c.path, "error", err)
	}
}

// clear removes the cached entry.
func (c *cache) clear() {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("license cache remove failed", "path", c.path, "error", err)
	}
}
