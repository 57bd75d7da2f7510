package license

import (
	"errors"

	"hollybrook.dev/keygate/api"
)

// Validation errors
var (
	ErrMissingKey     = errors.New("license key is required")
	ErrMissingProduct = errors.New("license must reference a product")
	ErrInvalidStatus  = errors.New("status must be one of: active, expired, invalid")
)

type License struct {
	LicenseID     string `db:"license_id"`
	ProductID     int64  `db:"product_id"`
	LicenseKey    string `db:"license_key"`
	UserRef       string `db:"user_ref"`
	Status        string `db:"status"`
	Version       string `db:"version"`
	IsEarlyAccess bool   `db:"is_early_access"`
	Activations   int    `db:"activations"`
}

// Validate checks business rules for a license
func (l *License) Validate() error {
	if l.LicenseKey == "" {
		return ErrMissingKey
	}
	if l.ProductID == 0 {
		return ErrMissingProduct
	}
	if !ValidStatus(l.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ValidStatus reports whether s is a recognized license status.
func ValidStatus(s string) bool {
	switch s {
	case api.StatusActive, api.StatusExpired, api.StatusInvalid:
		return true
	}
	return false
}
