package machine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Get(ctx context.Context, licenseID, machineID string) (*Activation, error)
	GetTx(ctx context.Context, tx *sqlx.Tx, licenseID, machineID string) (*Activation, error)
	GetForLicense(ctx context.Context, licenseID string) ([]Activation, error)
	CountForLicense(ctx context.Context, licenseID string) (int, error)

	Create(ctx context.Context, tx *sqlx.Tx, a *Activation) error
	Touch(ctx context.Context, tx *sqlx.Tx, licenseID, machineID, lastActivatedAt, installedVersion string) error
	Delete(ctx context.Context, tx *sqlx.Tx, licenseID, machineID string) (bool, error)
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, licenseID, machineID string) (*Activation, error) {
	var a Activation
	err := r.db.GetContext(ctx, &a, getActivationSQL, licenseID, machineID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activation: %w", err)
	}
	return &a, nil
}

// GetTx reads within a transaction so the existence check and the writes
// that follow it see a consistent view.
func (r *repo) GetTx(ctx context.Context, tx *sqlx.Tx, licenseID, machineID string) (*Activation, error) {
	var a Activation
	err := tx.GetContext(ctx, &a, getActivationSQL, licenseID, machineID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activation: %w", err)
	}
	return &a, nil
}

func (r *repo) GetForLicense(ctx context.Context, licenseID string) ([]Activation, error) {
	var out []Activation
	err := r.db.SelectContext(ctx, &out, getForLicenseSQL, licenseID)
	if err != nil {
		return nil, fmt.Errorf("get activations: %w", err)
	}
	return out, nil
}

func (r *repo) CountForLicense(ctx context.Context, licenseID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countForLicenseSQL, licenseID)
	if err != nil {
		return 0, fmt.Errorf("count activations: %w", err)
	}
	return n, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, a *Activation) error {
	_, err := tx.ExecContext(ctx, createActivationSQL,
		a.LicenseID,
		a.MachineID,
		a.CreatedAt,
		a.LastActivatedAt,
		a.InstalledVersion,
	)
	if err != nil {
		return fmt.Errorf("create activation: %w", err)
	}
	return nil
}

func (r *repo) Touch(ctx context.Context, tx *sqlx.Tx, licenseID, machineID, lastActivatedAt, installedVersion string) error {
	_, err := tx.ExecContext(ctx, touchActivationSQL, lastActivatedAt, installedVersion, licenseID, machineID)
	if err != nil {
		return fmt.Errorf("touch activation: %w", err)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, licenseID, machineID string) (bool, error) {
	res, err := tx.ExecContext(ctx, deleteActivationSQL, licenseID, machineID)
	if err != nil {
		return false, fmt.Errorf("delete activation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete activation: %w", err)
	}
	return n == 1, nil
}
