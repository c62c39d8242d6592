package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// InsertSetting stores value JSON-encoded under key.
func (s *Store) InsertSetting(ctx context.Context, key string, value any, description, category string, public bool) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO system_settings (id, key, value, description, category, is_public)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), key, string(raw), description, category, public)
	if err != nil {
		return fmt.Errorf("failed to insert setting %q: %w", key, err)
	}
	return nil
}

// ListSettings returns all settings, or only the public ones when
// publicOnly is set.
func (s *Store) ListSettings(ctx context.Context, publicOnly bool) ([]Setting, error) {
	q := `SELECT key, value, COALESCE(description, ''), category, is_public FROM system_settings`
	var args []any
	if publicOnly {
		q += ` WHERE is_public = ?`
		args = append(args, true)
	}
	q += ` ORDER BY category, key`

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []Setting{}
	for rows.Next() {
		var st Setting
		var raw string
		if err := rows.Scan(&st.Key, &raw, &st.Description, &st.Category, &st.IsPublic); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		st.Value = json.RawMessage(raw)
		settings = append(settings, st)
	}
	return settings, rows.Err()
}
