package license

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
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

func (s *Service) GetByKey(ctx context.Context, licenseKey string) (*License, error) {
	return s.repo.GetByKey(ctx, licenseKey)
}

func (s *Service) GetByID(ctx context.Context, licenseID string) (*License, error) {
	return s.repo.GetByID(ctx, licenseID)
}

func (s *Service) GetForProduct(ctx context.Context, productID int64) ([]License, error) {
	return s.repo.GetForProduct(ctx, productID)
}

func (s *Service) Create(ctx context.Context, lic *License) (*License, error) {
	if err := lic.Validate(); err != nil {
		return nil, err
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, lic)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, lic.LicenseID)
}

// SetStatus records an externally driven status transition. The core never
// changes status on its own.
func (s *Service) SetStatus(ctx context.Context, licenseID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.UpdateStatus(ctx, tx, licenseID, status)
	})
}

func (s *Service) SetVersion(ctx context.Context, licenseID, version string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.UpdateVersion(ctx, tx, licenseID, version)
	})
}

// Repo exposes the repository for callers that compose multi-table
// transactions (the activation service).
func (s *Service) Repo() Repository {
	return s.repo
}
