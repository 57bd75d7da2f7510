package client

import (
	"crypto/sha256"
	"encoding/base64"
	"os"
	"runtime"
	"strings"
)

// machineIDLength is the length of the derived fingerprint. 32 base64url
// characters keep 192 bits of the hash, far beyond collision range for a
// per-license machine list.
const machineIDLength = 32

// Fingerprint derives a stable machine identifier from host attributes. It
// is deterministic on one machine across runs and contains no recoverable
// hardware details. Attributes that cannot be read fall back to a fixed
// placeholder so a partial read still yields a stable value.
func Fingerprint() string {
	parts := []string{
		hostAttr(os.Hostname),
		runtime.GOOS,
		runtime.GOARCH,
		cpuModel(),
		hostAttr(os.UserHomeDir),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	id := base64.RawURLEncoding.EncodeToString(sum[:])
	return id[:machineIDLength]
}

func hostAttr(read func() (string, error)) string {
	v, err := read()
	if err != nil || v == "" {
		return "unknown"
	}
	return v
}

// cpuModel reads the processor model where the platform exposes one. Linux
// is the only platform with a stable, cheap source; elsewhere the GOOS and
// GOARCH components carry the platform signal.
func cpuModel() string {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "unknown"
	}
	for _, line := range strings.Split(string(data), "\n") {
		if name, value, ok := strings.Cut(line, ":"); ok {
			if strings.TrimSpace(name) == "model name" {
				return strings.TrimSpace(value)
			}
		}
	}
	return "unknown"
}
