package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewAccount describes an admin_users row to insert. Password must already
// be hashed.
type NewAccount struct {
	Name     string
	Email    string
	Phone    string
	Password string
	UserType string
	IsActive bool
}

const accountColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), password, user_type, is_active, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Password, &a.UserType, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc NewAccount) (*Account, error) {
	id := uuid.NewString()
	email := strings.ToLower(strings.TrimSpace(acc.Email))
	phone := strings.TrimSpace(acc.Phone)

	_, err := s.exec(ctx, `
		INSERT INTO admin_users (id, name, email, phone, password, user_type, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, acc.Name, nullString(email), nullString(phone), acc.Password, acc.UserType, acc.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.GetAccountByID(ctx, id)
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	return scanAccount(s.queryRow(ctx, `SELECT `+accountColumns+` FROM admin_users WHERE id = ?`, id))
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(s.queryRow(ctx, `SELECT `+accountColumns+` FROM admin_users WHERE email = ?`, email))
}

func (s *Store) GetAccountByPhone(ctx context.Context, phone string) (*Account, error) {
	return scanAccount(s.queryRow(ctx, `SELECT `+accountColumns+` FROM admin_users WHERE phone = ?`, strings.TrimSpace(phone)))
}

func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.query(ctx, `SELECT `+accountColumns+` FROM admin_users ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
