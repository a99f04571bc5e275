package repository

import (
	"database/sql"
	"errors"
	"strings"

	"otpdesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MaxUserAccounts caps the number of user-role accounts the store accepts.
const MaxUserAccounts = 5

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrCapacityExceeded  = errors.New("maximum number of user accounts reached")
)

type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id int64) (*models.User, error)
	UpdatePassword(id int64, passwordHash string) error
	Delete(id int64) error
	ListByRole(role models.Role) ([]models.User, error)
	CountByRole(role models.Role) (int, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

// Create inserts a new account. The capacity check and the insert run in
// one transaction so two concurrent creations cannot both pass the check;
// the UNIQUE constraint on username is the backstop for duplicates.
func (r *userRepository) Create(user *models.User) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if user.Role == models.RoleUser {
		var count int
		if err := tx.Get(&count, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleUser); err != nil {
			return err
		}
		if count >= MaxUserAccounts {
			return ErrCapacityExceeded
		}
	}

	err = tx.QueryRowx(
		`INSERT INTO users (username, password_hash, role, secret_code, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		user.Username, user.PasswordHash, user.Role, user.SecretCode, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return err
	}

	return tx.Commit()
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, password_hash, role, secret_code, created_at FROM users WHERE username = ?`
	if err := r.db.Get(&user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, password_hash, role, secret_code, created_at FROM users WHERE id = ?`
	if err := r.db.Get(&user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(id int64, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// Delete removes the account if present. Deleting an absent id is a no-op.
func (r *userRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *userRepository) ListByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	query := `SELECT id, username, password_hash, role, secret_code, created_at FROM users WHERE role = ? ORDER BY id`
	if err := r.db.Select(&users, query, role); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRole(role models.Role) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE role = ?`, role); err != nil {
		return 0, err
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
