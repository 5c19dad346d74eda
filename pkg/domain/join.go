package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantAccountRole represents the role an account holds in a tenant.
type TenantAccountRole string

const (
	RoleOwner  TenantAccountRole = "owner"
	RoleAdmin  TenantAccountRole = "admin"
	RoleNormal TenantAccountRole = "normal"
)

// TenantAccountJoin links one account to one tenant with a role.
// Every account that has completed the SSO flow has at least one join row,
// and its current tenant always refers to a tenant it is joined to.
type TenantAccountJoin struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	AccountID uuid.UUID
	Role      TenantAccountRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
