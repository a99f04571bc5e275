package repository

import (
	"otpdesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	Delete(id int64) error
	ListNewestFirst() ([]models.Comment, error)
}

type commentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCommentRepository(db *sqlx.DB, logger *zap.Logger) CommentRepository {
	return &commentRepository{db: db, logger: logger}
}

func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.QueryRowx(
		`INSERT INTO comments (user_id, username, text, timestamp) VALUES (?, ?, ?, ?) RETURNING id`,
		comment.UserID, comment.Username, comment.Text, comment.Timestamp,
	).Scan(&comment.ID)
}

// Delete removes the comment if present. Absent ids are a no-op.
func (r *commentRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}

func (r *commentRepository) ListNewestFirst() ([]models.Comment, error) {
	var comments []models.Comment
	query := `SELECT id, user_id, username, text, timestamp FROM comments ORDER BY timestamp DESC, id DESC`
	if err := r.db.Select(&comments, query); err != nil {
		return nil, err
	}
	return comments, nil
}
