package domain

import "errors"

// Persistence errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrJoinNotFound    = errors.New("tenant account join not found")
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
)

// Signed-request errors
var (
	ErrMissingParameter = errors.New("missing required parameters")
	ErrExpiredRequest   = errors.New("request expired")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidSignature = errors.New("invalid sign")
)
