package service

import (
	"errors"
	"fmt"
	"time"

	"otpdesk/internal/models"
	"otpdesk/internal/repository"

	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
)

// dummyHash is compared against when the username is unknown, so a failed
// login costs the same whether the user exists or not.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("otpdesk-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

type AuthService interface {
	Authenticate(username, password string) (*models.User, error)
	CreateUser(username, password string) (*models.User, error)
	ChangePassword(user *models.User, current, newPassword, confirm string) error
	DeleteUser(id int64) error
	ListUsers() ([]models.User, error)
	EnsureAdmin(username, password string) error
}

type authService struct {
	users  repository.UserRepository
	issuer string
	log    *logrus.Logger
}

func NewAuthService(users repository.UserRepository, issuer string, log *logrus.Logger) AuthService {
	return &authService{users: users, issuer: issuer, log: log}
}

// Authenticate verifies the credentials and returns the account. Both the
// unknown-username and wrong-password cases collapse into
// ErrInvalidCredentials.
func (s *authService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		s.log.Errorf("Failed to look up user %q: %v", username, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateUser provisions a user-role account with a fresh random TOTP
// secret. Capacity and duplicate checks happen inside the repository
// transaction; their sentinel errors pass through unchanged.
func (s *authService) CreateUser(username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		SecretCode:   key.Secret(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) || errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, err
		}
		s.log.Errorf("Failed to create user %q: %v", username, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Infof("User %q created", username)
	return user, nil
}

func (s *authService) ChangePassword(user *models.User, current, newPassword, confirm string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, string(hash)); err != nil {
		s.log.Errorf("Failed to update password for user %q: %v", user.Username, err)
		return fmt.Errorf("failed to update password: %w", err)
	}

	user.PasswordHash = string(hash)
	return nil
}

func (s *authService) DeleteUser(id int64) error {
	return s.users.Delete(id)
}

func (s *authService) ListUsers() ([]models.User, error) {
	return s.users.ListByRole(models.RoleUser)
}

// EnsureAdmin creates the admin account on first startup and warns loudly
// while its password remains at the configured default.
func (s *authService) EnsureAdmin(username, password string) error {
	admin, err := s.users.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up admin account: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin = &models.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.users.Create(admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		s.log.Infof("Default admin created: %q", username)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil {
		s.log.Warnf("SECURITY: admin account %q still uses the default password, change it", username)
	}

	return nil
}
