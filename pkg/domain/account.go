package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBanned  AccountStatus = "banned"
	AccountStatusClosed  AccountStatus = "closed"
)

// Account represents a console account provisioned from the external
// identity source. The email is derived from the external username and is
// unique across accounts.
type Account struct {
	ID              uuid.UUID
	Email           string
	Name            string
	Avatar          string
	Status          AccountStatus
	CurrentTenantID *uuid.UUID
	LastLoginAt     *time.Time
	LastLoginIP     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive returns true if the account may sign in.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
