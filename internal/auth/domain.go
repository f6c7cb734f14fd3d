package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Credential is the account projection auth needs to log someone in.
type Credential struct {
	ID             int64
	EmployeeNumber int
	Role           string
	PasswordHash   string
	Active         bool
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID         int64  `json:"id"`
	EmployeeNumber int    `json:"employeeNumber"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = fmt.Errorf("auth: invalid credentials: %w", httpx.ErrUnauthorized)
	ErrTokenInvalid       = fmt.Errorf("auth: token invalid: %w", httpx.ErrUnauthorized)
	ErrTooManyAttempts    = fmt.Errorf("auth: too many attempts: %w", httpx.ErrConflict)
	ErrValidation         = fmt.Errorf("auth: %w", httpx.ErrValidation)
	ErrForbidden          = fmt.Errorf("auth: %w", httpx.ErrForbidden)
)
