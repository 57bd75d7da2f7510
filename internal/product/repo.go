package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Get(ctx context.Context, productID int64) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	GetAll(ctx context.Context) ([]Product, error)

	Create(ctx context.Context, tx *sqlx.Tx, p *Product) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, p *Product) error
	Delete(ctx context.Context, tx *sqlx.Tx, code string) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, productID int64) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, getProductSQL, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *repo) GetByCode(ctx context.Context, code string) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, getProductByCodeSQL, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return &p, nil
}

func (r *repo) GetAll(ctx context.Context) ([]Product, error) {
	var out []Product
	err := r.db.SelectContext(ctx, &out, getAllProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return out, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, p *Product) (int64, error) {
	res, err := tx.ExecContext(ctx, createProductSQL,
		p.ProductCode,
		p.ProductName,
		p.KeyPrefix,
		p.MaxActivations,
		p.LatestVersion,
		p.DownloadURL,
	)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, p *Product) error {
	_, err := tx.ExecContext(ctx, updateProductSQL,
		p.ProductName,
		p.KeyPrefix,
		p.MaxActivations,
		p.LatestVersion,
		p.DownloadURL,
		p.ProductCode,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, code string) error {
	_, err := tx.ExecContext(ctx, deleteProductSQL, code)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
