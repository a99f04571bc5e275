package service

import (
	"fmt"
	"time"

	"otpdesk/internal/models"
	"otpdesk/internal/notify"
	"otpdesk/internal/repository"

	"github.com/sirupsen/logrus"
)

type CommentService interface {
	// Post stores a comment for the admin. Empty text is a silent no-op
	// and returns (nil, nil).
	Post(user *models.User, text string) (*models.Comment, error)
	Delete(id int64) error
	List() ([]models.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	notifier *notify.Notifier
	log      *logrus.Logger
}

func NewCommentService(comments repository.CommentRepository, notifier *notify.Notifier, log *logrus.Logger) CommentService {
	return &commentService{comments: comments, notifier: notifier, log: log}
}

func (s *commentService) Post(user *models.User, text string) (*models.Comment, error) {
	if text == "" {
		return nil, nil
	}

	comment := &models.Comment{
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := s.comments.Create(comment); err != nil {
		s.log.Errorf("Failed to store comment from user %q: %v", user.Username, err)
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	// Notification failures never reach the posting user.
	s.notifier.CommentPosted(comment.Username, comment.Text)

	return comment, nil
}

func (s *commentService) Delete(id int64) error {
	return s.comments.Delete(id)
}

func (s *commentService) List() ([]models.Comment, error) {
	return s.comments.ListNewestFirst()
}
