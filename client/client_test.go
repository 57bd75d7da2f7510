package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hollybrook.dev/keygate/api"
)

// fakeServer is a scripted Keygate server that counts requests.
type fakeServer struct {
	*httptest.Server
	requests atomic.Int64

	validate func(req api.ValidateRequest) (int, api.ValidateResponse)
	activate func(req api.ActivateRequest) (int, api.ActivateResponse)
	version  api.VersionInfo
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/validate", func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		var req api.ValidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode validate request: %v", err)
		}
		status, resp := fs.validate(req)
		writeJSON(w, status, resp)
	})
	mux.HandleFunc("POST /api/v1/activate", func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		var req api.ActivateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode activate request: %v", err)
		}
		status, resp := fs.activate(req)
		writeJSON(w, status, resp)
	})
	mux.HandleFunc("GET /api/v1/productver/", func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		writeJSON(w, http.StatusOK, fs.version)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func okValidate(lic api.LicenseInfo, ver api.VersionInfo) func(api.ValidateRequest) (int, api.ValidateResponse) {
	return func(api.ValidateRequest) (int, api.ValidateResponse) {
		return http.StatusOK, api.ValidateResponse{Valid: true, License: &lic, Version: &ver}
	}
}

func testLicense() api.LicenseInfo {
	return api.LicenseInfo{
		Key:            "HBV-TEST0001",
		Version:        "2.0.0",
		Status:         api.StatusActive,
		Activations:    1,
		MaxActivations: 2,
	}
}

func testVersion() api.VersionInfo {
	return api.VersionInfo{Product: "vault", LatestVersion: "3.0.0", DownloadURL: "https://downloads.example.com/vault"}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:   baseURL,
		Product:   "vault",
		KeyPrefix: "HBV-",
		CachePath: filepath.Join(t.TempDir(), "license.json"),
		Version:   "2.0.0",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.machineID = "test-machine"
	return c
}

func TestValidateFormatShortCircuit(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(t, fs.URL)

	for _, key := range []string{"", "abc", "XYZ-TEST0001", "HBV-X"} {
		if _, err := c.Validate(context.Background(), key); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("key %q: expected ErrInvalidFormat, got %v", key, err)
		}
	}

	if n := fs.requests.Load(); n != 0 {
		t.Errorf("expected no requests for malformed keys, got %d", n)
	}
}

func TestValidateCaching(t *testing.T) {
	fs := newFakeServer(t)
	fs.validate = okValidate(testLicense(), testVersion())
	c := newTestClient(t, fs.URL)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	lic, err := c.Validate(context.Background(), "hbv-test0001")
	if err != nil {
		t.Fatalf("first validate: %v", err)
	}
	if lic.Key != "HBV-TEST0001" {
		t.Errorf("unexpected license key %q", lic.Key)
	}
	if n := fs.requests.Load(); n != 1 {
		t.Fatalf("expected 1 request, got %d", n)
	}

	t.Run("fresh cache answers without network", func(t *testing.T) {
		c.now = func() time.Time { return base.Add(23 * time.Hour) }

		lic, err := c.Validate(context.Background(), "HBV-TEST0001")
		if err != nil {
			t.Fatalf("cached validate: %v", err)
		}
		if lic.Status != api.StatusActive {
			t.Errorf("unexpected status %q", lic.Status)
		}
		if n := fs.requests.Load(); n != 1 {
			t.Errorf("expected cached validate to skip network, got %d requests", n)
		}
	})

	t.Run("expired cache revalidates online", func(t *testing.T) {
		c.now = func() time.Time { return base.Add(25 * time.Hour) }

		if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("revalidate: %v", err)
		}
		if n := fs.requests.Load(); n != 2 {
			t.Errorf("expected expired cache to revalidate, got %d requests", n)
		}
	})

	t.Run("ValidateFresh always calls the server", func(t *testing.T) {
		before := fs.requests.Load()
		if _, err := c.ValidateFresh(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("validate fresh: %v", err)
		}
		if n := fs.requests.Load(); n != before+1 {
			t.Errorf("expected ValidateFresh to hit the server, got %d requests", n)
		}
	})

	t.Run("different key misses the cache", func(t *testing.T) {
		fs.validate = func(req api.ValidateRequest) (int, api.ValidateResponse) {
			lic := testLicense()
			lic.Key = req.Key
			return http.StatusOK, api.ValidateResponse{Valid: true, License: &lic}
		}
		before := fs.requests.Load()
		if _, err := c.Validate(context.Background(), "HBV-OTHER001"); err != nil {
			t.Fatalf("validate other key: %v", err)
		}
		if n := fs.requests.Load(); n != before+1 {
			t.Errorf("expected a different key to miss the cache, got %d requests", n)
		}
	})
}

func TestValidateOfflineGrace(t *testing.T) {
	fs := newFakeServer(t)
	fs.validate = okValidate(testLicense(), testVersion())
	c := newTestClient(t, fs.URL)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
		t.Fatalf("seed validate: %v", err)
	}

	// Server goes away.
	fs.Close()

	t.Run("stale cache accepted within the grace period", func(t *testing.T) {
		c.now = func() time.Time { return base.Add(6 * 24 * time.Hour) }

		lic, err := c.Validate(context.Background(), "HBV-TEST0001")
		if err != nil {
			t.Fatalf("expected grace fallback, got %v", err)
		}
		if lic.Key != "HBV-TEST0001" {
			t.Errorf("unexpected license key %q", lic.Key)
		}
	})

	t.Run("stale cache rejected after the grace period", func(t *testing.T) {
		c.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }

		_, err := c.Validate(context.Background(), "HBV-TEST0001")
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})

	t.Run("grace never applies to an uncached key", func(t *testing.T) {
		c.now = func() time.Time { return base }

		_, err := c.Validate(context.Background(), "HBV-NEVER001")
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})
}

func TestValidateNeverCachesRejection(t *testing.T) {
	fs := newFakeServer(t)
	fs.validate = func(api.ValidateRequest) (int, api.ValidateResponse) {
		return http.StatusNotFound, api.ValidateResponse{
			Valid: false,
			Error: &api.Error{Code: api.CodeNotFound, Message: "license key not found"},
		}
	}
	c := newTestClient(t, fs.URL)

	_, err := c.Validate(context.Background(), "HBV-TEST0001")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "license key not found" {
		t.Errorf("expected the server's message verbatim, got %q", err.Error())
	}

	if _, ok := c.cache.load(); ok {
		t.Error("rejections must never be cached")
	}

	// A definitive verdict is final; no fallback softens it.
	if _, err := c.Validate(context.Background(), "HBV-TEST0001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on retry, got %v", err)
	}
}

func TestValidateErrorMapping(t *testing.T) {
	cases := []struct {
		code     string
		sentinel error
	}{
		{api.CodeNotFound, ErrNotFound},
		{api.CodeProductMismatch, ErrProductMismatch},
		{api.CodeInactive, ErrInactive},
		{"INTERNAL_ERROR", ErrNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			fs := newFakeServer(t)
			fs.validate = func(api.ValidateRequest) (int, api.ValidateResponse) {
				return http.StatusForbidden, api.ValidateResponse{
					Valid: false,
					Error: &api.Error{Code: tc.code, Message: "server says no"},
				}
			}
			c := newTestClient(t, fs.URL)

			_, err := c.Validate(context.Background(), "HBV-TEST0001")
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestActivate(t *testing.T) {
	fs := newFakeServer(t)
	fs.version = testVersion()
	fs.activate = func(req api.ActivateRequest) (int, api.ActivateResponse) {
		if req.MachineID != "test-machine" {
			return http.StatusBadRequest, api.ActivateResponse{
				Error: &api.Error{Code: api.CodeInvalidFormat, Message: "machineId is required"},
			}
		}
		lic := testLicense()
		return http.StatusOK, api.ActivateResponse{Success: true, License: &lic}
	}
	c := newTestClient(t, fs.URL)

	lic, err := c.Activate(context.Background(), "HBV-TEST0001")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if lic.Activations != 1 {
		t.Errorf("unexpected activations %d", lic.Activations)
	}

	entry, ok := c.cache.load()
	if !ok {
		t.Fatal("expected activation to seed the cache")
	}
	if entry.Key != "HBV-TEST0001" || entry.MachineID != "test-machine" {
		t.Errorf("unexpected cache entry: %+v", entry)
	}
	if entry.Version.LatestVersion != "3.0.0" {
		t.Errorf("expected version info in cache, got %+v", entry.Version)
	}

	t.Run("limit error surfaces as ErrActivationLimit", func(t *testing.T) {
		fs.activate = func(api.ActivateRequest) (int, api.ActivateResponse) {
			return http.StatusConflict, api.ActivateResponse{
				Error: &api.Error{Code: api.CodeActivationLimit, Message: "maximum activations reached (2 machines)"},
			}
		}

		_, err := c.Activate(context.Background(), "HBV-TEST0001")
		if !errors.Is(err, ErrActivationLimit) {
			t.Fatalf("expected ErrActivationLimit, got %v", err)
		}
		if err.Error() != "maximum activations reached (2 machines)" {
			t.Errorf("expected the server's message verbatim, got %q", err.Error())
		}
	})
}

func TestCacheHygiene(t *testing.T) {
	fs := newFakeServer(t)
	fs.validate = okValidate(testLicense(), testVersion())

	t.Run("corrupt cache file is a miss, then repaired", func(t *testing.T) {
		c := newTestClient(t, fs.URL)
		if err := os.WriteFile(c.cfg.CachePath, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("write corrupt cache: %v", err)
		}

		if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("validate with corrupt cache: %v", err)
		}
		if entry, ok := c.cache.load(); !ok || entry.Key != "HBV-TEST0001" {
			t.Errorf("expected cache to be rewritten, got %+v", entry)
		}
	})

	t.Run("cache bound to another machine is a miss", func(t *testing.T) {
		c := newTestClient(t, fs.URL)
		before := fs.requests.Load()

		if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("seed validate: %v", err)
		}

		c.machineID = "other-machine"
		if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("validate from other machine: %v", err)
		}
		if n := fs.requests.Load(); n != before+2 {
			t.Errorf("expected a machine mismatch to revalidate online, got %d requests", n-before)
		}
	})

	t.Run("deactivate clears the stored key", func(t *testing.T) {
		c := newTestClient(t, fs.URL)
		if _, err := c.Validate(context.Background(), "HBV-TEST0001"); err != nil {
			t.Fatalf("seed validate: %v", err)
		}
		if _, ok := c.StoredKey(); !ok {
			t.Fatal("expected a stored key before deactivation")
		}

		c.Deactivate()

		if _, ok := c.StoredKey(); ok {
			t.Error("expected no stored key after deactivation")
		}
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint()
	b := Fingerprint()

	if a != b {
		t.Errorf("fingerprint must be stable across calls: %q vs %q", a, b)
	}
	if len(a) != machineIDLength {
		t.Errorf("expected %d characters, got %d", machineIDLength, len(a))
	}
	for _, r := range a {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			t.Errorf("unexpected character %q in fingerprint", r)
		}
	}
}
