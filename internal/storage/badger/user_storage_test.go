package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
)

func TestUserStorage_CreateAndLookup(t *testing.T) {
	storage := NewUserStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	user := &models.User{ID: "usr_1", UserName: "  Alice ", PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, storage.CreateUser(ctx, user))
	assert.Equal(t, "alice", user.UserName)
	assert.False(t, user.CreatedAt.IsZero())

	byName, err := storage.GetUserByName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := storage.GetUser(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.UserName)

	count, err := storage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserStorage_DuplicateName(t *testing.T) {
	storage := NewUserStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.CreateUser(ctx, &models.User{ID: "usr_1", UserName: "bob", Role: models.RoleUser}))

	err := storage.CreateUser(ctx, &models.User{ID: "usr_2", UserName: "Bob", Role: models.RoleUser})
	assert.ErrorIs(t, err, interfaces.ErrUserExists)
}

func TestUserStorage_Missing(t *testing.T) {
	storage := NewUserStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.GetUser(ctx, "usr_missing")
	assert.ErrorIs(t, err, interfaces.ErrUserNotFound)

	_, err = storage.GetUserByName(ctx, "nobody")
	assert.ErrorIs(t, err, interfaces.ErrUserNotFound)
}

func TestUserStorage_MissingID(t *testing.T) {
	storage := NewUserStorage(newTestDB(t), arbor.NewLogger())

	err := storage.CreateUser(context.Background(), &models.User{UserName: "carol"})
	assert.Error(t, err)
}
