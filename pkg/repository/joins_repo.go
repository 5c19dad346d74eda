package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jscn-oa/console-sso/pkg/domain"
)

// JoinsRepository handles tenant account join persistence.
type JoinsRepository struct {
	db *sql.DB
}

// NewJoinsRepository creates a new joins repository.
func NewJoinsRepository(db *sql.DB) *JoinsRepository {
	return &JoinsRepository{db: db}
}

// CreateTx creates a new join within a transaction.
func (r *JoinsRepository) CreateTx(ctx context.Context, q Querier, join *domain.TenantAccountJoin) error {
	query := `
		INSERT INTO tenant_account_joins (id, tenant_id, account_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		join.ID,
		join.TenantID,
		join.AccountID,
		join.Role,
		join.CreatedAt,
		join.UpdatedAt,
	)
	return err
}

// GetFirstByAccountID retrieves the earliest-created join for an account.
func (r *JoinsRepository) GetFirstByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.TenantAccountJoin, error) {
	return r.GetFirstByAccountIDTx(ctx, r.db, accountID)
}

// GetFirstByAccountIDTx retrieves the earliest-created join for an account
// using q. Ordering by creation time makes the pick deterministic when an
// account belongs to multiple tenants.
func (r *JoinsRepository) GetFirstByAccountIDTx(ctx context.Context, q Querier, accountID uuid.UUID) (*domain.TenantAccountJoin, error) {
	query := `
		SELECT id, tenant_id, account_id, role, created_at, updated_at
		FROM tenant_account_joins
		WHERE account_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`

	var join domain.TenantAccountJoin
	err := q.QueryRowContext(ctx, query, accountID).Scan(
		&join.ID,
		&join.TenantID,
		&join.AccountID,
		&join.Role,
		&join.CreatedAt,
		&join.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJoinNotFound
		}
		return nil, err
	}

	return &join, nil
}

// ExistsTx checks whether a join exists for the account and tenant using q.
func (r *JoinsRepository) ExistsTx(ctx context.Context, q Querier, accountID, tenantID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tenant_account_joins WHERE account_id = $1 AND tenant_id = $2)`
	var exists bool
	err := q.QueryRowContext(ctx, query, accountID, tenantID).Scan(&exists)
	return exists, err
}
