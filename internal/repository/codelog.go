package repository

import (
	"otpdesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CodeLogRepository interface {
	Create(entry *models.CodeLog) error
	ListNewestFirst() ([]models.CodeLog, error)
}

type codeLogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCodeLogRepository(db *sqlx.DB, logger *zap.Logger) CodeLogRepository {
	return &codeLogRepository{db: db, logger: logger}
}

func (r *codeLogRepository) Create(entry *models.CodeLog) error {
	return r.db.QueryRowx(
		`INSERT INTO code_logs (user_id, username, code, timestamp) VALUES (?, ?, ?, ?) RETURNING id`,
		entry.UserID, entry.Username, entry.Code, entry.Timestamp,
	).Scan(&entry.ID)
}

func (r *codeLogRepository) ListNewestFirst() ([]models.CodeLog, error) {
	var logs []models.CodeLog
	query := `SELECT id, user_id, username, code, timestamp FROM code_logs ORDER BY timestamp DESC, id DESC`
	if err := r.db.Select(&logs, query); err != nil {
		return nil, err
	}
	return logs, nil
}
