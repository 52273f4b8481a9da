package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/model"
)

const userColumns = `id, username, password_hash, role, created_at`

func scanUser(s rowScanner, u *model.User) error {
	return s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, db.Time(&u.CreatedAt))
}

// getUserWhere loads the single user matching column = value. column is
// always a literal from this file.
func getUserWhere(ctx context.Context, database *db.DB, column, value string) (*model.User, error) {
	var u model.User
	err := scanUser(database.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value), &u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &u, nil
}

// CreateUser inserts an account. A taken username returns ErrDuplicateUsername.
func CreateUser(ctx context.Context, database *db.DB, id, username, passwordHash, role string) (*model.User, error) {
	u := model.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := database.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Role, db.FormatTime(u.CreatedAt),
	)
	if err != nil {
		return nil, classifyDuplicate("create user", err)
	}
	return &u, nil
}

// GetUser returns the account whose id is the owner id, or nil.
func GetUser(ctx context.Context, database *db.DB, id string) (*model.User, error) {
	return getUserWhere(ctx, database, "id", id)
}

// GetUserByUsername returns the account with username, or nil.
func GetUserByUsername(ctx context.Context, database *db.DB, username string) (*model.User, error) {
	return getUserWhere(ctx, database, "username", username)
}

// CountUsers returns the number of accounts.
func CountUsers(ctx context.Context, database *db.DB) (int, error) {
	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// UpdateUserPassword replaces the password hash of an existing account.
func UpdateUserPassword(ctx context.Context, database *db.DB, id, passwordHash string) error {
	res, err := database.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update password: no user %s", id)
	}
	return nil
}

// ListUsers returns all accounts ordered by username.
func ListUsers(ctx context.Context, database *db.DB) ([]model.User, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
