package handler

import (
	"net/http"

	"otpdesk/internal/models"
	"otpdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncedUser is one row of the device sync payload.
type SyncedUser struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type SyncHandler interface {
	SyncUsers(c *gin.Context)
}

type syncHandler struct {
	users repository.UserRepository
	log   *logrus.Logger
}

func NewSyncHandler(users repository.UserRepository, log *logrus.Logger) SyncHandler {
	return &syncHandler{users: users, log: log}
}

// SyncUsers returns every user-role account as {name, secret} so the
// embedded device can recompute the same codes. Deliberately
// unauthenticated: the endpoint trusts network-level isolation.
func (h *syncHandler) SyncUsers(c *gin.Context) {
	users, err := h.users.ListByRole(models.RoleUser)
	if err != nil {
		h.log.Errorf("Sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]SyncedUser, 0, len(users))
	for _, u := range users {
		out = append(out, SyncedUser{Name: u.Username, Secret: u.SecretCode})
	}

	h.log.Infof("Syncing %d users to the device", len(out))
	c.JSON(http.StatusOK, out)
}
