package admin

import (
	"hollybrook.dev/keygate/internal/license"
	"hollybrook.dev/keygate/internal/machine"
	"hollybrook.dev/keygate/internal/product"
)

// -------------------------
// Product DTOs
// -------------------------

type CreateProductRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	KeyPrefix      string `json:"keyPrefix"`
	MaxActivations int    `json:"maxActivations"`
	LatestVersion  string `json:"latestVersion"`
	DownloadURL    string `json:"downloadUrl"`
}

type UpdateProductRequest struct {
	Name           string `json:"name"`
	MaxActivations int    `json:"maxActivations"`
	LatestVersion  string `json:"latestVersion"`
	DownloadURL    string `json:"downloadUrl"`
}

type ProductResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	KeyPrefix      string `json:"keyPrefix"`
	MaxActivations int    `json:"maxActivations"`
	LatestVersion  string `json:"latestVersion"`
	DownloadURL    string `json:"downloadUrl"`
}

func toProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		Code:           p.ProductCode,
		Name:           p.ProductName,
		KeyPrefix:      p.KeyPrefix,
		MaxActivations: p.MaxActivations,
		LatestVersion:  p.LatestVersion,
		DownloadURL:    p.DownloadURL,
	}
}

// -------------------------
// License DTOs
// -------------------------

// IssueLicenseRequest creates a license. Key is optional; when empty the
// server generates one from the product's key prefix.
type IssueLicenseRequest struct {
	Product       string `json:"product"`
	Key           string `json:"key"`
	UserRef       string `json:"userRef"`
	Version       string `json:"version"`
	IsEarlyAccess bool   `json:"isEarlyAccess"`
}

type UpdateLicenseStatusRequest struct {
	Status string `json:"status"`
}

type UpdateLicenseVersionRequest struct {
	Version string `json:"version"`
}

type LicenseResponse struct {
	LicenseID     string `json:"licenseId"`
	Product       string `json:"product"`
	Key           string `json:"key"`
	UserRef       string `json:"userRef"`
	Status        string `json:"status"`
	Version       string `json:"version"`
	IsEarlyAccess bool   `json:"isEarlyAccess"`
	Activations   int    `json:"activations"`
}

func toLicenseResponse(lic *license.License, productCode string) *LicenseResponse {
	return &LicenseResponse{
		LicenseID:     lic.LicenseID,
		Product:       productCode,
		Key:           lic.LicenseKey,
		UserRef:       lic.UserRef,
		Status:        lic.Status,
		Version:       lic.Version,
		IsEarlyAccess: lic.IsEarlyAccess,
		Activations:   lic.Activations,
	}
}

// -------------------------
// Activation DTOs
// -------------------------

type ActivationResponse struct {
	MachineID        string `json:"machineId"`
	CreatedAt        string `json:"createdAt"`
	LastActivatedAt  string `json:"lastActivatedAt"`
	InstalledVersion string `json:"installedVersion"`
}

func toActivationResponse(a *machine.Activation) *ActivationResponse {
	return &ActivationResponse{
		MachineID:        a.MachineID,
		CreatedAt:        a.CreatedAt,
		LastActivatedAt:  a.LastActivatedAt,
		InstalledVersion: a.InstalledVersion,
	}
}
