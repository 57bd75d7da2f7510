package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hollybrook.dev/keygate/api"
	"hollybrook.dev/keygate/internal/keys"
	"hollybrook.dev/keygate/internal/license"
	"hollybrook.dev/keygate/internal/machine"
	"hollybrook.dev/keygate/internal/product"
)

// ErrNotFound marks lookups whose target does not exist. Handlers map it to
// a 404.
var ErrNotFound = errors.New("not found")

type Service struct {
	products *product.Service
	licenses *license.Service
	machines *machine.Service
}

func NewService(p *product.Service, lic *license.Service, m *machine.Service) *Service {
	return &Service{
		products: p,
		licenses: lic,
		machines: m,
	}
}

// -------------------------
// Products
// -------------------------

func (s *Service) GetProducts(ctx context.Context) ([]ProductResponse, error) {
	prods, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(prods))
	for i := range prods {
		out = append(out, *toProductResponse(&prods[i]))
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, code string) (*ProductResponse, error) {
	prod, err := s.getProduct(ctx, code)
	if err != nil {
		return nil, err
	}
	return toProductResponse(prod), nil
}

func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	prod, err := s.products.Create(ctx, &product.Product{
		ProductCode:    req.Code,
		ProductName:    req.Name,
		KeyPrefix:      req.KeyPrefix,
		MaxActivations: req.MaxActivations,
		LatestVersion:  req.LatestVersion,
		DownloadURL:    req.DownloadURL,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(prod), nil
}

// UpdateProduct changes a product's mutable fields. The code and key prefix
// are fixed at creation: issued keys embed the prefix.
func (s *Service) UpdateProduct(ctx context.Context, code string, req *UpdateProductRequest) error {
	prod, err := s.getProduct(ctx, code)
	if err != nil {
		return err
	}

	prod.ProductName = req.Name
	prod.MaxActivations = req.MaxActivations
	prod.LatestVersion = req.LatestVersion
	prod.DownloadURL = req.DownloadURL
	return s.products.Update(ctx, prod)
}

func (s *Service) DeleteProduct(ctx context.Context, code string) error {
	if _, err := s.getProduct(ctx, code); err != nil {
		return err
	}
	return s.products.Delete(ctx, code)
}

// -------------------------
// Licenses
// -------------------------

func (s *Service) IssueLicense(ctx context.Context, req *IssueLicenseRequest) (*LicenseResponse, error) {
	prod, err := s.getProduct(ctx, req.Product)
	if err != nil {
		return nil, err
	}

	key := keys.Normalize(req.Key)
	if key == "" {
		key = generateKey(prod.KeyPrefix)
	}

	status := api.StatusActive
	lic, err := s.licenses.Create(ctx, &license.License{
		LicenseID:     uuid.NewString(),
		ProductID:     prod.ProductID,
		LicenseKey:    key,
		UserRef:       req.UserRef,
		Status:        status,
		Version:       req.Version,
		IsEarlyAccess: req.IsEarlyAccess,
	})
	if err != nil {
		return nil, err
	}
	return toLicenseResponse(lic, prod.ProductCode), nil
}

func (s *Service) GetLicense(ctx context.Context, key string) (*LicenseResponse, error) {
	lic, prod, err := s.getLicense(ctx, key)
	if err != nil {
		return nil, err
	}
	return toLicenseResponse(lic, prod.ProductCode), nil
}

func (s *Service) GetLicensesForProduct(ctx context.Context, code string) ([]LicenseResponse, error) {
	prod, err := s.getProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	lics, err := s.licenses.GetForProduct(ctx, prod.ProductID)
	if err != nil {
		return nil, err
	}
	out := make([]LicenseResponse, 0, len(lics))
	for i := range lics {
		out = append(out, *toLicenseResponse(&lics[i], prod.ProductCode))
	}
	return out, nil
}

func (s *Service) SetLicenseStatus(ctx context.Context, key, status string) error {
	if !license.ValidStatus(status) {
		return license.ErrInvalidStatus
	}

	lic, _, err := s.getLicense(ctx, key)
	if err != nil {
		return err
	}
	return s.licenses.SetStatus(ctx, lic.LicenseID, status)
}

func (s *Service) SetLicenseVersion(ctx context.Context, key, version string) error {
	if !product.IsValidVersion(version) {
		return fmt.Errorf("invalid version: %q", version)
	}

	lic, _, err := s.getLicense(ctx, key)
	if err != nil {
		return err
	}
	return s.licenses.SetVersion(ctx, lic.LicenseID, version)
}

// -------------------------
// Activations
// -------------------------

func (s *Service) GetActivations(ctx context.Context, key string) ([]ActivationResponse, error) {
	lic, _, err := s.getLicense(ctx, key)
	if err != nil {
		return nil, err
	}

	acts, err := s.machines.GetForLicense(ctx, lic.LicenseID)
	if err != nil {
		return nil, err
	}
	out := make([]ActivationResponse, 0, len(acts))
	for i := range acts {
		out = append(out, *toActivationResponse(&acts[i]))
	}
	return out, nil
}

// RevokeActivation removes a machine binding and releases its slot. The row
// delete and the counter decrement commit together so the counter keeps
// matching the row count.
func (s *Service) RevokeActivation(ctx context.Context, key, machineID string) error {
	lic, _, err := s.getLicense(ctx, key)
	if err != nil {
		return err
	}

	return s.licenses.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := s.machines.Repo().Delete(ctx, tx, lic.LicenseID, machineID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return s.licenses.Repo().DecrementActivations(ctx, tx, lic.LicenseID)
	})
}

func (s *Service) getProduct(ctx context.Context, code string) (*product.Product, error) {
	prod, err := s.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrNotFound
	}
	return prod, nil
}

func (s *Service) getLicense(ctx context.Context, key string) (*license.License, *product.Product, error) {
	lic, err := s.licenses.GetByKey(ctx, keys.Normalize(key))
	if err != nil {
		return nil, nil, err
	}
	if lic == nil {
		return nil, nil, ErrNotFound
	}

	prod, err := s.products.Get(ctx, lic.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if prod == nil {
		return nil, nil, fmt.Errorf("license %s references missing product %d", lic.LicenseID, lic.ProductID)
	}
	return lic, prod, nil
}

// generateKey builds a fresh license key from the product prefix and a
// random UUID.
func generateKey(prefix string) string {
	return keys.Normalize(prefix + strings.ToUpper(uuid.NewString()))
}
