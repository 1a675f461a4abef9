package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boxmgr/internal/model"
)

type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func (r *SettingRepository) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, COALESCE(description, ''), updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]model.Setting, 0)
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetValue returns the value for a key, or "" when the key is unset.
func (r *SettingRepository) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

func (r *SettingRepository) Set(ctx context.Context, key string, value string, description string) error {
	if strings.TrimSpace(key) == "" {
		return model.ErrInvalidInput
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, description, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), now())
		 ON CONFLICT (key)
		 DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description, updated_at = now()`,
		key, value, description)
	if err != nil {
		return fmt.Errorf("save setting: %w", err)
	}
	return nil
}
