package sso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jscn-oa/console-sso/pkg/domain"
	"github.com/jscn-oa/console-sso/pkg/repository"
)

// workspaceNameSuffix is appended to the display name when creating a
// personal workspace ("<name>'s workspace").
const workspaceNameSuffix = "的工作空间"

// AccountServiceConfig holds reconciliation settings.
type AccountServiceConfig struct {
	// EmailDomain is the fixed domain appended to the external username to
	// form the canonical account email.
	EmailDomain string
}

// AccountService maps a verified external identity to exactly one local
// account with exactly one associated workspace, creating or repairing
// either as needed.
type AccountService struct {
	config   AccountServiceConfig
	db       *sql.DB
	accounts *repository.AccountsRepository
	tenants  *repository.TenantsRepository
	joins    *repository.JoinsRepository
	logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	config AccountServiceConfig,
	db *sql.DB,
	accounts *repository.AccountsRepository,
	tenants *repository.TenantsRepository,
	joins *repository.JoinsRepository,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		config:   config,
		db:       db,
		accounts: accounts,
		tenants:  tenants,
		joins:    joins,
		logger:   logger,
	}
}

// GetOrCreateAccount resolves the external identity to a local account and
// updates login bookkeeping, all within a single transaction. Two concurrent
// first-time logins for the same username race on the accounts.email unique
// constraint; the loser retries once down the existing-account path.
func (s *AccountService) GetOrCreateAccount(ctx context.Context, username, nickname, clientIP string) (*domain.Account, error) {
	if username == "" {
		return nil, domain.ErrMissingParameter
	}

	account, err := s.reconcile(ctx, username, nickname, clientIP)
	if err != nil && repository.IsUniqueViolation(err) {
		s.logger.Warn("lost account create race, retrying", "username", username)
		account, err = s.reconcile(ctx, username, nickname, clientIP)
	}
	return account, err
}

func (s *AccountService) reconcile(ctx context.Context, username, nickname, clientIP string) (*domain.Account, error) {
	email := fmt.Sprintf("%s@%s", username, s.config.EmailDomain)
	name := nickname
	if name == "" {
		name = username
	}

	var account *domain.Account
	err := repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		account, err = s.accounts.GetByEmailTx(ctx, tx, email)
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			account, err = s.createAccount(ctx, tx, email, name)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := s.ensureWorkspace(ctx, tx, account, name); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		account.LastLoginAt = &now
		account.LastLoginIP = clientIP
		if account.Status != domain.AccountStatusActive {
			account.Status = domain.AccountStatusActive
		}
		if account.Name != name {
			s.logger.Info("syncing account name", "email", email, "old", account.Name, "new", name)
			account.Name = name
		}

		return s.accounts.UpdateTx(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// createAccount provisions a new account with its own workspace and an
// owner join row.
func (s *AccountService) createAccount(ctx context.Context, tx *sql.Tx, email, name string) (*domain.Account, error) {
	s.logger.Info("creating account", "email", email)

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Avatar:    "",
		Status:    domain.AccountStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	tenant, err := s.createWorkspace(ctx, tx, account, name)
	if err != nil {
		return nil, err
	}
	account.CurrentTenantID = &tenant.ID
	return account, nil
}

// ensureWorkspace guarantees an existing account has a join row and a valid
// current tenant. Accounts without any join are repaired with a fresh
// workspace; a stale current tenant falls back to the earliest join.
func (s *AccountService) ensureWorkspace(ctx context.Context, tx *sql.Tx, account *domain.Account, name string) error {
	join, err := s.joins.GetFirstByAccountIDTx(ctx, tx, account.ID)
	if errors.Is(err, domain.ErrJoinNotFound) {
		s.logger.Info("repairing account without workspace", "email", account.Email)
		tenant, err := s.createWorkspace(ctx, tx, account, name)
		if err != nil {
			return err
		}
		account.CurrentTenantID = &tenant.ID
		return nil
	}
	if err != nil {
		return err
	}

	if account.CurrentTenantID != nil {
		ok, err := s.joins.ExistsTx(ctx, tx, account.ID, *account.CurrentTenantID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	account.CurrentTenantID = &join.TenantID
	return nil
}

func (s *AccountService) createWorkspace(ctx context.Context, tx *sql.Tx, account *domain.Account, name string) (*domain.Tenant, error) {
	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:        uuid.New(),
		Name:      name + workspaceNameSuffix,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenants.CreateTx(ctx, tx, tenant); err != nil {
		return nil, err
	}

	join := &domain.TenantAccountJoin{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		AccountID: account.ID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.joins.CreateTx(ctx, tx, join); err != nil {
		return nil, err
	}

	return tenant, nil
}
