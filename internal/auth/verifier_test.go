package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

func TestVerifyCaller(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	v := &Verifier{Secret: "s3cret", DB: database}
	ana := &model.User{ID: "u-abc", Username: "ana", Role: model.RoleUser}

	token, err := GenerateToken("s3cret", ana)
	require.NoError(t, err)

	id, err := v.VerifyCaller(ctx, "Bearer "+token, "")
	require.NoError(t, err)
	assert.Equal(t, "u-abc", id.OwnerID)
	assert.Equal(t, "ana", id.Username)
	assert.NotEmpty(t, id.TokenID)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), id.ExpiresAt, 5*time.Second)

	t.Run("missing header", func(t *testing.T) {
		_, err := v.VerifyCaller(ctx, "", "")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := v.VerifyCaller(ctx, "Basic "+token, "")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("bad signature", func(t *testing.T) {
		other, _ := GenerateToken("other", ana)
		_, err := v.VerifyCaller(ctx, "Bearer "+other, "")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, store.RevokeToken(ctx, database, id.TokenID, id.ExpiresAt))
		_, err := v.VerifyCaller(ctx, "Bearer "+token, "")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})
}

func TestVerifyCallerDevHeader(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	strict := &Verifier{Secret: "s", DB: database}
	_, err := strict.VerifyCaller(ctx, "", "u-dev")
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	dev := &Verifier{Secret: "s", DB: database, DevHeader: true}
	id, err := dev.VerifyCaller(ctx, "", "u-dev")
	require.NoError(t, err)
	assert.Equal(t, "u-dev", id.OwnerID)
}
