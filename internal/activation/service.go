// Package activation implements the authority-side license operations:
// Validate, a pure read, and Activate, which binds a machine fingerprint to
// a license under the product's activation cap.
package activation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"hollybrook.dev/keygate/api"
	"hollybrook.dev/keygate/internal/keys"
	"hollybrook.dev/keygate/internal/license"
	"hollybrook.dev/keygate/internal/machine"
	"hollybrook.dev/keygate/internal/product"
	"hollybrook.dev/keygate/internal/sqlite"
)

// errLostInsertRace signals that another request inserted the same
// (license, machine) row between our existence check and our insert. The
// transaction is rolled back and the activation retried, where it resolves
// idempotently.
var errLostInsertRace = errors.New("lost activation insert race")

type Service struct {
	db         *sqlx.DB
	licenseSvc *license.Service
	productSvc *product.Service
	machineSvc *machine.Service
}

func NewService(
	db *sqlx.DB,
	licenseSvc *license.Service,
	productSvc *product.Service,
	machineSvc *machine.Service,
) *Service {
	return &Service{
		db:         db,
		licenseSvc: licenseSvc,
		productSvc: productSvc,
		machineSvc: machineSvc,
	}
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Result is the outcome of a successful Validate.
type Result struct {
	License api.LicenseInfo
	Version api.VersionInfo
}

// Validate checks a license key against the authority's records. It never
// mutates state.
func (s *Service) Validate(ctx context.Context, key, productCode string) (*Result, error) {
	lic, prod, err := s.lookup(ctx, key, productCode)
	if err != nil {
		return nil, err
	}

	return &Result{
		License: snapshot(lic, prod),
		Version: versionInfo(prod),
	}, nil
}

// Activate binds machineID to the license identified by key. Re-activating
// an already-bound machine succeeds without consuming a slot; a new machine
// claims a slot through a conditional increment so concurrent requests
// cannot overrun the product's cap.
func (s *Service) Activate(ctx context.Context, key, machineID, installedVersion, productCode string) (*api.LicenseInfo, error) {
	if machineID == "" {
		return nil, fmt.Errorf("machine id is required")
	}

	lic, prod, err := s.lookup(ctx, key, productCode)
	if err != nil {
		return nil, err
	}

	// One retry covers the window where a concurrent request for the same
	// (license, machine) pair inserts the row first; the second attempt
	// observes it and succeeds idempotently.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.activateTx(ctx, lic, prod, machineID, installedVersion)
		if !errors.Is(err, errLostInsertRace) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	// Reload for the post-activation count.
	updated, err := s.licenseSvc.GetByID(ctx, lic.LicenseID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("license disappeared during activation: %s", lic.LicenseID)
	}

	info := snapshot(updated, prod)
	return &info, nil
}

func (s *Service) activateTx(ctx context.Context, lic *license.License, prod *product.Product, machineID, installedVersion string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.machineSvc.Repo().GetTx(ctx, tx, lic.LicenseID, machineID)
		if err != nil {
			return err
		}

		// Already bound: refresh the row, never touch the counter.
		if existing != nil {
			return s.machineSvc.Repo().Touch(ctx, tx, lic.LicenseID, machineID, now, installedVersion)
		}

		claimed, err := s.licenseSvc.Repo().IncrementActivations(ctx, tx, lic.LicenseID, prod.MaxActivations)
		if err != nil {
			return err
		}
		if !claimed {
			return &ActivationLimitError{Max: prod.MaxActivations}
		}

		err = s.machineSvc.Repo().Create(ctx, tx, &machine.Activation{
			LicenseID:        lic.LicenseID,
			MachineID:        machineID,
			CreatedAt:        now,
			LastActivatedAt:  now,
			InstalledVersion: installedVersion,
		})
		if sqlite.IsUniqueConstraintError(err) {
			return errLostInsertRace
		}
		return err
	})
}

// lookup runs the checks shared by Validate and Activate: key resolution,
// product scoping, and status.
func (s *Service) lookup(ctx context.Context, key, productCode string) (*license.License, *product.Product, error) {
	normalized := keys.Normalize(key)

	lic, err := s.licenseSvc.GetByKey(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	if lic == nil {
		return nil, nil, &NotFoundError{Key: normalized}
	}

	prod, err := s.productSvc.Get(ctx, lic.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if prod == nil {
		return nil, nil, fmt.Errorf("license %s references missing product %d", lic.LicenseID, lic.ProductID)
	}

	if productCode != "" && !strings.EqualFold(productCode, prod.ProductCode) {
		return nil, nil, &ProductMismatchError{Requested: productCode, Actual: prod.ProductCode}
	}

	if lic.Status != api.StatusActive {
		return nil, nil, &InactiveLicenseError{Status: lic.Status}
	}

	return lic, prod, nil
}

func snapshot(lic *license.License, prod *product.Product) api.LicenseInfo {
	return api.LicenseInfo{
		Key:            lic.LicenseKey,
		Version:        lic.Version,
		Status:         lic.Status,
		IsEarlyAccess:  lic.IsEarlyAccess,
		Activations:    lic.Activations,
		MaxActivations: prod.MaxActivations,
	}
}

func versionInfo(prod *product.Product) api.VersionInfo {
	return api.VersionInfo{
		Product:       prod.ProductCode,
		LatestVersion: prod.LatestVersion,
		DownloadURL:   prod.DownloadURL,
	}
}
