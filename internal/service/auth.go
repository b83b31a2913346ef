package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/cartsync/internal/models"
)

var (
	// ErrUserExists is returned when registering an already-taken login.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned on unknown login or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// CreateUser stores a new user record.
	CreateUser(ctx context.Context, user models.User) error
	// UserByLogin fetches a user by login. Returns ErrInvalidCredentials
	// semantics via a nil user and no error when absent.
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	// SaveToken records an issued bearer token for the given user.
	SaveToken(ctx context.Context, token, userID string) error
	// UserByToken resolves a bearer token to its owning user ID.
	UserByToken(ctx context.Context, token string) (string, error)
	// DeleteToken revokes an issued bearer token.
	DeleteToken(ctx context.Context, token string) error
}

// AuthService implements registration, password login, and bearer
// token validation by delegating to an AuthRepository.
type AuthService struct {
	// repo performs the data-layer operations.
	repo AuthRepository
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a user with a bcrypt-hashed password.
// Returns ErrUserExists if the login is taken.
func (s *AuthService) Register(ctx context.Context, login, password string) error {
	exists, err := s.repo.UserExists(ctx, login)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
	})
}

// Login verifies the credentials and issues a new bearer token.
// Returns ErrInvalidCredentials on unknown login or wrong password.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := s.repo.UserByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.repo.SaveToken(ctx, token, user.ID); err != nil {
		return "", err
	}
	return token, nil
}

// UserByToken resolves a bearer token to its owning user ID. It
// satisfies the auth middleware's TokenValidator.
func (s *AuthService) UserByToken(ctx context.Context, token string) (string, error) {
	return s.repo.UserByToken(ctx, token)
}

// Logout revokes the given bearer token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteToken(ctx, token)
}
