package client

import (
	"errors"

	"hollybrook.dev/keygate/api"
)

// Sentinel errors for the distinct validation outcomes. Wire errors wrap
// one of these, so callers can branch with errors.Is while the error text
// keeps the server's verbatim message.
var (
	ErrInvalidFormat   = errors.New("license key format is invalid")
	ErrNotFound        = errors.New("license key not found")
	ErrProductMismatch = errors.New("license key belongs to a different product")
	ErrInactive        = errors.New("license is not active")
	ErrActivationLimit = errors.New("license activation limit reached")

	// ErrNetwork covers unreachable servers, timeouts and malformed or
	// unexpected server responses. It is the only error the offline grace
	// window applies to.
	ErrNetwork = errors.New("license server unreachable")
)

// apiError carries a structured wire error through the sentinel taxonomy.
type apiError struct {
	code    string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func (e *apiError) Unwrap() error {
	switch e.code {
	case api.CodeInvalidFormat:
		return ErrInvalidFormat
	case api.CodeNotFound:
		return ErrNotFound
	case api.CodeProductMismatch:
		return ErrProductMismatch
	case api.CodeInactive:
		return ErrInactive
	case api.CodeActivationLimit:
		return ErrActivationLimit
	default:
		// Unknown codes come from server faults, not from this license.
		return ErrNetwork
	}
}
