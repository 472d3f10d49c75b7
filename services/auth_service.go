package services

import (
	"errors"
	"fmt"
	"log/slog"
	"nfinite/auth"
	apperrors "nfinite/errors"
	"nfinite/infrastructure/storage"
)

type IAuthService interface {
	Authenticate(name, pass string) (storage.User, error)
}

// AuthService registers a user the first time a name is seen and checks the
// password on every later registration message.
type AuthService struct {
	log            *slog.Logger
	userRepository storage.IUserRepository
}

func NewAuthService(log *slog.Logger, repo storage.IUserRepository) IAuthService {
	return &AuthService{log: log, userRepository: repo}
}

func (s *AuthService) Authenticate(name, pass string) (storage.User, error) {
	if err := auth.ValidateCredentials(auth.Credentials{Name: name, Pass: pass}); err != nil {
		return storage.User{}, err
	}

	user, err := s.userRepository.GetUser(name)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return s.register(name, pass)
	case err != nil:
		return storage.User{}, fmt.Errorf("lookup user %s: %w", name, err)
	}

	match, err := auth.ComparePassword(pass, user.PasswordHash)
	if err != nil || !match {
		// Same error whatever failed, to avoid leaking which part was wrong
		return storage.User{}, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) register(name, pass string) (storage.User, error) {
	hashedPassword, err := auth.HashPassword(pass)
	if err != nil {
		return storage.User{}, fmt.Errorf("hashing failed: %w", err)
	}
	user, err := s.userRepository.CreateUser(name, hashedPassword)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		// Lost a race with a concurrent first registration
		return s.Authenticate(name, pass)
	}
	if err != nil {
		return storage.User{}, err
	}
	s.log.Info("New user registered", "name", name, "id", user.ID)
	return user, nil
}
