package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// UserSource resolves login credentials from the user store.
type UserSource interface {
	ByEmployeeNumber(ctx context.Context, employeeNumber int) (Credential, bool, error)
}

// Service wraps authentication business rules.
type Service struct {
	users   UserSource
	issuer  *TokenIssuer
	limiter *LoginLimiter
}

// NewService constructs a new Service. The limiter may be nil.
func NewService(users UserSource, issuer *TokenIssuer, limiter *LoginLimiter) *Service {
	return &Service{users: users, issuer: issuer, limiter: limiter}
}

// Login validates employee number and password and returns a signed token.
// Failed attempts count against the login limiter; a lockout is reported
// before credentials are checked.
func (s *Service) Login(ctx context.Context, employeeNumber int, password string) (string, error) {
	if employeeNumber <= 0 || strings.TrimSpace(password) == "" {
		return "", ErrValidation
	}
	if !s.limiter.Allow(ctx, employeeNumber) {
		return "", ErrTooManyAttempts
	}
	cred, ok, err := s.users.ByEmployeeNumber(ctx, employeeNumber)
	if err != nil {
		return "", err
	}
	if !ok || !cred.Active {
		s.limiter.RecordFailure(ctx, employeeNumber)
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.limiter.RecordFailure(ctx, employeeNumber)
		return "", ErrInvalidCredentials
	}
	s.limiter.Reset(ctx, employeeNumber)
	return s.issuer.Issue(cred)
}

// Verify exposes token verification to the HTTP middleware.
func (s *Service) Verify(token string) (Claims, error) {
	return s.issuer.Verify(token)
}
