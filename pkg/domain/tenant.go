package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents a workspace an account operates within.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
