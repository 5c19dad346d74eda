package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jscn-oa/console-sso/pkg/domain"
)

// AccountsRepository handles account persistence.
type AccountsRepository struct {
	db *sql.DB
}

// NewAccountsRepository creates a new accounts repository.
func NewAccountsRepository(db *sql.DB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

const accountColumns = `id, email, name, avatar, status, current_tenant_id, last_login_at, last_login_ip, created_at, updated_at`

func scanAccount(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Name, &account.Avatar, &account.Status,
		&account.CurrentTenantID, &account.LastLoginAt, &account.LastLoginIP,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetByEmail retrieves an account by email.
func (r *AccountsRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

// GetByEmailTx retrieves an account by email using q.
func (r *AccountsRepository) GetByEmailTx(ctx context.Context, q Querier, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1
	`
	return scanAccount(q.QueryRowContext(ctx, query, email))
}

// GetByID retrieves an account by ID.
func (r *AccountsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// CreateTx creates a new account within a transaction.
func (r *AccountsRepository) CreateTx(ctx context.Context, q Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, name, avatar, status, current_tenant_id, last_login_at, last_login_ip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.ExecContext(ctx, query,
		account.ID, account.Email, account.Name, account.Avatar, account.Status,
		account.CurrentTenantID, account.LastLoginAt, account.LastLoginIP,
		account.CreatedAt, account.UpdatedAt,
	)
	return err
}

// UpdateTx updates the mutable fields of an account within a transaction.
func (r *AccountsRepository) UpdateTx(ctx context.Context, q Querier, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, avatar = $3, status = $4, current_tenant_id = $5,
		    last_login_at = $6, last_login_ip = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := q.ExecContext(ctx, query,
		account.ID, account.Name, account.Avatar, account.Status, account.CurrentTenantID,
		account.LastLoginAt, account.LastLoginIP, time.Now(),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
