// Package auth verifies account passwords and issues the signed session
// tokens that admin and driver API routes require.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markb/sareeone/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(s *store.Store, secret string) *Service {
	return &Service{
		store:  s,
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// LoginAdmin checks an admin's email and password.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (*store.Account, error) {
	acc, err := s.store.GetAccountByEmail(ctx, email)
	return s.check(acc, err, store.UserTypeAdmin, password)
}

// LoginDriver checks a driver's phone number and password.
func (s *Service) LoginDriver(ctx context.Context, phone, password string) (*store.Account, error) {
	acc, err := s.store.GetAccountByPhone(ctx, strings.TrimSpace(phone))
	return s.check(acc, err, store.UserTypeDriver, password)
}

func (s *Service) check(acc *store.Account, err error, userType, password string) (*store.Account, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if acc.UserType != userType {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, ErrAccountDisabled
	}
	return acc, nil
}

// CreateAdmin adds an active admin account with a bcrypt-hashed password.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*store.Account, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.CreateAccount(ctx, store.NewAccount{
		Name:     name,
		Email:    email,
		Password: string(hash),
		UserType: store.UserTypeAdmin,
		IsActive: true,
	})
}
