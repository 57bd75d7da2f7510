// Package client is the Keygate SDK embedded in licensed applications. It
// validates and activates license keys against a Keygate server, caching
// each confirmed result on disk so launches do not depend on connectivity.
//
// A cached result is trusted for CacheTTL. After that the client revalidates
// online; when the server cannot be reached, the last confirmed result keeps
// the application running for GracePeriod, measured from the time of the
// last successful online check.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hollybrook.dev/keygate/api"
	"hollybrook.dev/keygate/internal/keys"
)

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultGracePeriod = 7 * 24 * time.Hour
	defaultTimeout     = 10 * time.Second
)

// Config configures a Client. BaseURL and Product are required.
type Config struct {
	// BaseURL is the Keygate server root, e.g. "https://license.example.com".
	BaseURL string

	// Product is the product code licenses must belong to.
	Product string

	// KeyPrefix, when set, lets the client reject malformed keys without a
	// network round trip.
	KeyPrefix string

	// CachePath is the cache file location. Defaults to
	// <user cache dir>/keygate/<product>.json.
	CachePath string

	// CacheTTL is how long a confirmed result is trusted before the client
	// revalidates online. Defaults to 24 hours.
	CacheTTL time.Duration

	// GracePeriod is how long a stale confirmed result keeps working when
	// the server is unreachable. Defaults to 7 days.
	GracePeriod time.Duration

	// Version is the installed application version, reported to the server.
	Version string

	// Timeout bounds each request when HTTPClient is not set. Defaults to
	// 10 seconds.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	cfg       Config
	http      *http.Client
	cache     *cache
	logger    *slog.Logger
	machineID string

	now func() time.Time
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	if cfg.Product == "" {
		return nil, errors.New("client: Product is required")
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = defaultGracePeriod
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.CachePath == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("client: no cache dir available, set CachePath: %w", err)
		}
		cfg.CachePath = filepath.Join(dir, "keygate", cfg.Product+".json")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:       cfg,
		http:      cfg.HTTPClient,
		cache:     &cache{path: cfg.CachePath, logger: cfg.Logger},
		logger:    cfg.Logger,
		machineID: Fingerprint(),
		now:       time.Now,
	}, nil
}

// MachineID returns this machine's fingerprint as sent to the server.
func (c *Client) MachineID() string {
	return c.machineID
}

// StoredKey returns the license key held in the cache, if any.
func (c *Client) StoredKey() (string, bool) {
	entry, ok := c.cache.load()
	if !ok {
		return "", false
	}
	return entry.Key, true
}

// Validate checks a license key, answering from the cache when a confirmed
// result is still fresh. Malformed keys fail immediately with
// ErrInvalidFormat and no network traffic.
func (c *Client) Validate(ctx context.Context, key string) (*api.LicenseInfo, error) {
	normalized := keys.Normalize(key)
	if !keys.Valid(normalized, c.cfg.KeyPrefix) {
		return nil, c.formatErr()
	}

	if entry, ok := c.cachedFor(normalized); ok && c.now().Before(entry.ExpiresAt) {
		lic := entry.License
		return &lic, nil
	}

	return c.validateRemote(ctx, normalized)
}

// ValidateFresh checks a license key online, bypassing both the cache and
// the offline grace window. A confirmed result still refreshes the cache.
func (c *Client) ValidateFresh(ctx context.Context, key string) (*api.LicenseInfo, error) {
	normalized := keys.Normalize(key)
	if !keys.Valid(normalized, c.cfg.KeyPrefix) {
		return nil, c.formatErr()
	}

	var resp api.ValidateResponse
	if err := c.postJSON(ctx, "/api/v1/validate", api.ValidateRequest{
		Key:     normalized,
		Version: c.cfg.Version,
		Product: c.cfg.Product,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &apiError{code: resp.Error.Code, message: resp.Error.Message}
	}
	if !resp.Valid || resp.License == nil {
		return nil, fmt.Errorf("%w: malformed validate response", ErrNetwork)
	}

	c.storeResult(normalized, resp.License, resp.Version)
	lic := *resp.License
	return &lic, nil
}

// Activate binds this machine to the license. Activating a machine that is
// already bound succeeds without consuming another slot, so Activate is safe
// to call on every install or repair.
func (c *Client) Activate(ctx context.Context, key string) (*api.LicenseInfo, error) {
	normalized := keys.Normalize(key)
	if !keys.Valid(normalized, c.cfg.KeyPrefix) {
		return nil, c.formatErr()
	}

	var resp api.ActivateResponse
	if err := c.postJSON(ctx, "/api/v1/activate", api.ActivateRequest{
		Key:       normalized,
		MachineID: c.machineID,
		Version:   c.cfg.Version,
		Product:   c.cfg.Product,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &apiError{code: resp.Error.Code, message: resp.Error.Message}
	}
	if !resp.Success || resp.License == nil {
		return nil, fmt.Errorf("%w: malformed activate response", ErrNetwork)
	}

	// Version info is cosmetic next to the activation itself; a failed
	// fetch must not fail the activation or downgrade the cache.
	version, err := c.ProductVersion(ctx)
	if err != nil {
		c.logger.Warn("product version fetch failed after activation", "error", err)
		if entry, ok := c.cachedFor(normalized); ok {
			version = &entry.Version
		}
	}

	c.storeResult(normalized, resp.License, version)
	lic := *resp.License
	return &lic, nil
}

// Deactivate releases this machine locally by discarding the cached
// license. Freeing the activation slot on the server is an operator action.
func (c *Client) Deactivate() {
	c.cache.clear()
}

// ProductVersion fetches the latest released version of the configured
// product.
func (c *Client) ProductVersion(ctx context.Context) (*api.VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/v1/productver/"+c.cfg.Product, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: product version returned status %d", ErrNetwork, resp.StatusCode)
	}

	var info api.VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return &info, nil
}

// validateRemote validates online, falling back to the grace window when
// the server cannot be reached.
func (c *Client) validateRemote(ctx context.Context, normalized string) (*api.LicenseInfo, error) {
	lic, err := c.ValidateFresh(ctx, normalized)
	if err == nil {
		return lic, nil
	}

	// Only network-class failures fall back to the stale cache. A definitive
	// server verdict (not found, inactive, mismatch) stands.
	if !errors.Is(err, ErrNetwork) {
		return nil, err
	}

	if entry, ok := c.cachedFor(normalized); ok {
		if c.now().Before(entry.CachedAt.Add(c.cfg.GracePeriod)) {
			c.logger.Warn("license server unreachable, using cached result",
				"cachedAt", entry.CachedAt, "error", err)
			lic := entry.License
			return &lic, nil
		}
		c.logger.Warn("license server unreachable and cached result is beyond the grace period",
			"cachedAt", entry.CachedAt)
	}
	return nil, err
}

// formatErr builds the format rejection, naming the expected prefix when
// one is configured.
func (c *Client) formatErr() error {
	if c.cfg.KeyPrefix != "" {
		return fmt.Errorf("%w: expected a key starting with %q", ErrInvalidFormat, c.cfg.KeyPrefix)
	}
	return ErrInvalidFormat
}

// cachedFor returns the cached entry when it belongs to this key and this
// machine. Entries for other keys or machines are misses, not errors.
func (c *Client) cachedFor(normalized string) (*cacheEntry, bool) {
	entry, ok := c.cache.load()
	if !ok {
		return nil, false
	}
	if entry.Key != normalized || entry.MachineID != c.machineID {
		return nil, false
	}
	return entry, true
}

// storeResult caches a confirmed validation. Failed validations are never
// cached.
func (c *Client) storeResult(normalized string, lic *api.LicenseInfo, version *api.VersionInfo) {
	now := c.now()
	entry := &cacheEntry{
		Key:       normalized,
		MachineID: c.machineID,
		License:   *lic,
		CachedAt:  now,
		ExpiresAt: now.Add(c.cfg.CacheTTL),
	}
	if version != nil {
		entry.Version = *version
	}
	c.cache.store(entry)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	// Outcomes travel in the response envelope, so the body is decoded for
	// every status. A body that is not the envelope is a server fault.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: status %d with unreadable body: %v", ErrNetwork, resp.StatusCode, err)
	}
	return nil
}
