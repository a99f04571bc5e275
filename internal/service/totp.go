package service

import (
	"errors"
	"fmt"
	"time"

	"otpdesk/internal/models"
	"otpdesk/internal/repository"

	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
)

// ErrLogWriteFailed reports that the code was computed but the audit row
// could not be written. The code is still returned alongside this error:
// the device recomputes codes from the synced secret, so a displayed code
// stays usable even without its log entry.
var ErrLogWriteFailed = errors.New("failed to log the generated code")

type TOTPService interface {
	IssueCode(user *models.User) (string, error)
}

type totpService struct {
	logs repository.CodeLogRepository
	log  *logrus.Logger
	now  func() time.Time
}

func NewTOTPService(logs repository.CodeLogRepository, log *logrus.Logger) TOTPService {
	return &totpService{logs: logs, log: log, now: time.Now}
}

// IssueCode computes the current 30-second-step, 6-digit code for the
// user's secret and appends a CodeLog row with a username snapshot.
func (s *totpService) IssueCode(user *models.User) (string, error) {
	now := s.now()

	code, err := totp.GenerateCode(user.SecretCode, now)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	entry := &models.CodeLog{
		UserID:    user.ID,
		Username:  user.Username,
		Code:      code,
		Timestamp: now.UTC(),
	}
	if err := s.logs.Create(entry); err != nil {
		s.log.Errorf("Failed to log code for user %q: %v", user.Username, err)
		return code, ErrLogWriteFailed
	}

	return code, nil
}
