package machine

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

func (s *Service) Get(ctx context.Context, licenseID, machineID string) (*Activation, error) {
	return s.repo.Get(ctx, licenseID, machineID)
}

func (s *Service) GetForLicense(ctx context.Context, licenseID string) ([]Activation, error) {
	return s.repo.GetForLicense(ctx, licenseID)
}

func (s *Service) CountForLicense(ctx context.Context, licenseID string) (int, error) {
	return s.repo.CountForLicense(ctx, licenseID)
}

// Repo exposes the repository for callers that compose multi-table
// transactions (the activation service and the admin API).
func (s *Service) Repo() Repository {
	return s.repo
}
