package model

import (
	"fmt"
	"time"
)

// User is an account. Its ID is the owner id that partitions all data.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Password length bounds. bcrypt ignores bytes past 72.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var roleRank = map[string]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return roleRank[role] > 0
}

// RoleAtLeast reports whether role ranks at or above minimum. Unknown roles
// never qualify.
func RoleAtLeast(role, minimum string) bool {
	return ValidRole(minimum) && roleRank[role] >= roleRank[minimum]
}

// ValidatePassword checks password length.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordLength:
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}
