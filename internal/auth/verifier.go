// Package auth issues and verifies caller identity tokens.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

// DevUserHeader carries the owner id when development auth is enabled.
const DevUserHeader = "X-User-Id"

// Identity is a verified caller.
type Identity struct {
	OwnerID   string
	Username  string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier turns an Authorization header into an Identity.
type Verifier struct {
	Secret string
	DB     *db.DB
	// DevHeader accepts DevUserHeader in place of a token.
	DevHeader bool
}

// VerifyCaller checks a "Bearer <jwt>" header: signature, expiry and
// revocation. devUserID is the DevUserHeader value, only consulted when
// DevHeader is set and no bearer token was sent.
func (v *Verifier) VerifyCaller(ctx context.Context, authHeader, devUserID string) (*Identity, error) {
	if authHeader == "" && v.DevHeader && devUserID != "" {
		return &Identity{OwnerID: devUserID, Username: devUserID, Role: model.RoleUser}, nil
	}

	tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, errors.Unauthorized("missing or invalid authorization header")
	}

	claims, err := ValidateToken(v.Secret, tokenStr)
	if err != nil {
		return nil, errors.Unauthorized("invalid token")
	}

	if claims.ID != "" {
		revoked, err := store.IsTokenRevoked(ctx, v.DB, claims.ID)
		if err != nil {
			slog.Error("failed to check token revocation", "error", err)
			return nil, errors.Wrap(err, errors.CodeInternal, "internal error")
		}
		if revoked {
			return nil, errors.Unauthorized("token has been revoked")
		}
	}

	id := &Identity{
		OwnerID:  claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
