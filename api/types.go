// Package api defines the wire types shared by the keygate server and the
// client SDK. Both endpoints are plain JSON request/response pairs.
package api

// License status values. Transitions are driven by the admin API; the
// validation/activation path only reads them.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusInvalid = "invalid"
)

// Error codes returned in the error field of a response.
const (
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeNotFound        = "LICENSE_NOT_FOUND"
	CodeProductMismatch = "PRODUCT_MISMATCH"
	CodeInactive        = "LICENSE_INACTIVE"
	CodeActivationLimit = "ACTIVATION_LIMIT"
)

// LicenseInfo is the license snapshot included in successful responses.
type LicenseInfo struct {
	Key            string `json:"key"`
	Version        string `json:"version"`
	Status         string `json:"status"`
	IsEarlyAccess  bool   `json:"isEarlyAccess"`
	Activations    int    `json:"activations"`
	MaxActivations int    `json:"maxActivations"`
}

// VersionInfo describes the latest released version of a product.
type VersionInfo struct {
	Product       string `json:"product"`
	LatestVersion string `json:"latestVersion"`
	DownloadURL   string `json:"downloadUrl"`
}

// Error is the structured error carried in failed responses.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Key     string `json:"key"`
	Version string `json:"version"`
	Product string `json:"product,omitempty"`
}

// ValidateResponse is the reply to a validate request.
type ValidateResponse struct {
	Valid   bool         `json:"valid"`
	License *LicenseInfo `json:"license,omitempty"`
	Version *VersionInfo `json:"version,omitempty"`
	Error   *Error       `json:"error,omitempty"`
}

// ActivateRequest is the body of POST /api/v1/activate.
type ActivateRequest struct {
	Key       string `json:"key"`
	MachineID string `json:"machineId"`
	Version   string `json:"version"`
	Product   string `json:"product,omitempty"`
}

// ActivateResponse is the reply to an activate request.
type ActivateResponse struct {
	Success bool         `json:"success"`
	License *LicenseInfo `json:"license,omitempty"`
	Error   *Error       `json:"error,omitempty"`
}
