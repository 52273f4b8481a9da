package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/model"
)

func TestUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	n, err := CountUsers(ctx, database)
	require.NoError(t, err)
	assert.Zero(t, n)

	created, err := CreateUser(ctx, database, "u-9", "nika", "bcrypt-hash", model.RoleUser)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := GetUser(ctx, database, "u-9")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "nika", byID.Username)
	assert.Equal(t, "bcrypt-hash", byID.PasswordHash)
	assert.Equal(t, model.RoleUser, byID.Role)
	assert.True(t, created.CreatedAt.Equal(byID.CreatedAt))

	byName, err := GetUserByUsername(ctx, database, "nika")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "u-9", byName.ID)

	for _, lookup := range []func() (*model.User, error){
		func() (*model.User, error) { return GetUser(ctx, database, "u-0") },
		func() (*model.User, error) { return GetUserByUsername(ctx, database, "Nika") },
	} {
		u, err := lookup()
		require.NoError(t, err)
		assert.Nil(t, u)
	}

	n, err = CountUsers(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "u-1", "luka", "h", model.RoleUser)
	require.NoError(t, err)
	_, err = CreateUser(ctx, database, "u-2", "luka", "h", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "u-1", "luka", "before", model.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, UpdateUserPassword(ctx, database, "u-1", "after"))
	u, err := GetUser(ctx, database, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "after", u.PasswordHash)

	assert.Error(t, UpdateUserPassword(ctx, database, "u-missing", "x"))
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for id, name := range map[string]string{"u-2": "zala", "u-1": "ana", "u-3": "mojca"} {
		_, err := CreateUser(ctx, database, id, name, "h", model.RoleUser)
		require.NoError(t, err)
	}

	users, err = ListUsers(ctx, database)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"ana", "mojca", "zala"},
		[]string{users[0].Username, users[1].Username, users[2].Username})
}
