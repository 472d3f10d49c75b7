package services

import (
	"fmt"
	"log/slog"
	"nfinite/auth"
	"nfinite/errors"
	"nfinite/infrastructure/storage"
	"nfinite/mocks"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Authenticate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(slog.Default(), mockRepo)

	t.Run("should create the user on first registration", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUser("alice").Return(storage.User{}, errors.ErrUserNotFound).Times(1)
		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser("alice", gomock.Not("secret")).
			Return(storage.User{ID: "user-uuid", Username: "alice"}, nil).
			Times(1)

		user, err := svc.Authenticate("alice", "secret")

		req.NoError(err)
		req.Equal("user-uuid", user.ID)
	})

	t.Run("should accept the right password of a known user", func(t *testing.T) {
		req := require.New(t)
		hash, err := auth.HashPassword("secret")
		req.NoError(err)

		mockRepo.EXPECT().GetUser("bob").Return(storage.User{ID: "bob-id", PasswordHash: hash}, nil).Times(1)
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		user, err := svc.Authenticate("bob", "secret")

		req.NoError(err)
		req.Equal("bob-id", user.ID)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := require.New(t)
		hash, err := auth.HashPassword("secret")
		req.NoError(err)

		mockRepo.EXPECT().GetUser("bob").Return(storage.User{PasswordHash: hash}, nil).Times(1)

		_, err = svc.Authenticate("bob", "guess")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail before touching storage when credentials are invalid", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().GetUser(gomock.Any()).Times(0)

		_, err := svc.Authenticate("", "secret")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should surface storage failures", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUser("carol").Return(storage.User{}, fmt.Errorf("badger closed")).Times(1)

		_, err := svc.Authenticate("carol", "secret")

		req.ErrorContains(err, "badger closed")
	})
}
