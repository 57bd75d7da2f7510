package license

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hollybrook.dev/keygate/internal/keys"
)

type Repository interface {
	GetByKey(ctx context.Context, licenseKey string) (*License, error)
	GetByID(ctx context.Context, licenseID string) (*License, error)
	GetForProduct(ctx context.Context, productID int64) ([]License, error)

	Create(ctx context.Context, tx *sqlx.Tx, lic *License) error
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, licenseID, status string) error
	UpdateVersion(ctx context.Context, tx *sqlx.Tx, licenseID, version string) error

	IncrementActivations(ctx context.Context, tx *sqlx.Tx, licenseID string, max int) (bool, error)
	DecrementActivations(ctx context.Context, tx *sqlx.Tx, licenseID string) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByKey(ctx context.Context, licenseKey string) (*License, error) {
	var lic License
	err := r.db.GetContext(ctx, &lic, getLicenseByKeySQL, keys.Normalize(licenseKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license by key: %w", err)
	}
	return &lic, nil
}

func (r *repo) GetByID(ctx context.Context, licenseID string) (*License, error) {
	var lic License
	err := r.db.GetContext(ctx, &lic, getLicenseByIDSQL, licenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return &lic, nil
}

func (r *repo) GetForProduct(ctx context.Context, productID int64) ([]License, error) {
	var out []License
	err := r.db.SelectContext(ctx, &out, getLicensesForProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("get licenses: %w", err)
	}
	return out, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, lic *License) error {
	_, err := tx.ExecContext(ctx, createLicenseSQL,
		lic.LicenseID,
		lic.ProductID,
		keys.Normalize(lic.LicenseKey),
		lic.UserRef,
		lic.Status,
		lic.Version,
		lic.IsEarlyAccess,
	)
	if err != nil {
		return fmt.Errorf("create license: %w", err)
	}
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, licenseID, status string) error {
	_, err := tx.ExecContext(ctx, updateStatusSQL, status, licenseID)
	if err != nil {
		return fmt.Errorf("update license status: %w", err)
	}
	return nil
}

func (r *repo) UpdateVersion(ctx context.Context, tx *sqlx.Tx, licenseID, version string) error {
	_, err := tx.ExecContext(ctx, updateVersionSQL, version, licenseID)
	if err != nil {
		return fmt.Errorf("update license version: %w", err)
	}
	return nil
}

// IncrementActivations claims one activation slot if any remain. Returns
// false without error when the license already holds max activations.
func (r *repo) IncrementActivations(ctx context.Context, tx *sqlx.Tx, licenseID string, max int) (bool, error) {
	res, err := tx.ExecContext(ctx, incrementActivationsSQL, licenseID, max)
	if err != nil {
		return false, fmt.Errorf("increment activations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment activations: %w", err)
	}
	return n == 1, nil
}

func (r *repo) DecrementActivations(ctx context.Context, tx *sqlx.Tx, licenseID string) error {
	_, err := tx.ExecContext(ctx, decrementActivationsSQL, licenseID)
	if err != nil {
		return fmt.Errorf("decrement activations: %w", err)
	}
	return nil
}
