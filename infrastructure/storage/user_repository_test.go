package storage

import (
	apperrors "nfinite/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	// When a user is created
	created, err := repo.CreateUser("alice", "$argon2id$hash")
	req.NoError(err)
	req.NotEmpty(created.ID)

	// Then it can be read back by username
	user, err := repo.GetUser("alice")
	req.NoError(err)
	req.Equal(created.ID, user.ID)
	req.Equal("$argon2id$hash", user.PasswordHash)
}

func TestUserRepository_Duplicate(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	_, err := repo.CreateUser("alice", "h1")
	req.NoError(err)

	_, err = repo.CreateUser("alice", "h2")
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)

	// The first hash is untouched
	user, err := repo.GetUser("alice")
	req.NoError(err)
	req.Equal("h1", user.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	_, err := NewUserRepository(db).GetUser("ghost")
	req.ErrorIs(err, apperrors.ErrUserNotFound)
}
