package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Keys every shop gets on registration. Slot computation falls back to the
// same values when a key is missing.
const (
	SettingWorkStart    = "work_start"
	SettingWorkEnd      = "work_end"
	SettingSlotInterval = "slot_interval"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetAll(ctx context.Context, ownerID int) (map[string]string, error) {
	rows, err := r.db.Query(ctx, "SELECT key, value FROM settings WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

func (r *SettingsRepository) Set(ctx context.Context, ownerID int, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (owner_id, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, key) DO UPDATE SET value = EXCLUDED.value`,
		ownerID, key, value)
	return err
}
