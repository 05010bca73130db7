package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/compass-backend/internal/model"
)

type ServiceAccountRepository struct {
	pool *pgxpool.Pool
}

func NewServiceAccountRepository(pool *pgxpool.Pool) *ServiceAccountRepository {
	return &ServiceAccountRepository{pool: pool}
}

func (r *ServiceAccountRepository) Create(ctx context.Context, a *model.ServiceAccount) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO service_accounts (name, secret_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		a.Name, a.SecretHash).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByName returns the account or nil when no such name exists.
func (r *ServiceAccountRepository) GetByName(ctx context.Context, name string) (*model.ServiceAccount, error) {
	var a model.ServiceAccount
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, secret_hash, disabled, created_at, updated_at
		 FROM service_accounts WHERE name = $1`, name).
		Scan(&a.ID, &a.Name, &a.SecretHash, &a.Disabled, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ServiceAccountRepository) GetByID(ctx context.Context, id int) (*model.ServiceAccount, error) {
	var a model.ServiceAccount
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, secret_hash, disabled, created_at, updated_at
		 FROM service_accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.SecretHash, &a.Disabled, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ServiceAccountRepository) SetDisabled(ctx context.Context, id int, disabled bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE service_accounts SET disabled = $1, updated_at = NOW() WHERE id = $2`,
		disabled, id)
	return err
}
