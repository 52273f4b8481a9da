package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/omara/internal/db"
)

const settingJWTSecret = "jwt_secret"

// GetSetting returns the value stored under key, or "" with ok false.
func GetSetting(ctx context.Context, database *db.DB, key string) (string, bool, error) {
	var value string
	err := database.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// PutSetting stores value under key, replacing any previous value.
func PutSetting(ctx context.Context, database *db.DB, key, value string) error {
	_, err := database.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// settingOrInit returns the value under key. When absent, candidate is stored
// first; concurrent initializers all read back whichever insert won.
func settingOrInit(ctx context.Context, database *db.DB, key, candidate string) (string, error) {
	_, err := database.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("init setting %s: %w", key, err)
	}
	value, ok, err := GetSetting(ctx, database, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %s vanished after init", key)
	}
	return value, nil
}

// GetJWTSecret returns the token signing secret, generating 32 random bytes
// on first use.
func GetJWTSecret(ctx context.Context, database *db.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return settingOrInit(ctx, database, settingJWTSecret, hex.EncodeToString(buf))
}
