package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"otpdesk/internal/repository"
	"otpdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler interface {
	Dashboard(c *gin.Context)
	DeleteUser(c *gin.Context)
	DeleteComment(c *gin.Context)
}

type adminHandler struct {
	authService    service.AuthService
	totpLogs       repository.CodeLogRepository
	commentService service.CommentService
	log            *logrus.Logger
}

func NewAdminHandler(authService service.AuthService, totpLogs repository.CodeLogRepository, commentService service.CommentService, log *logrus.Logger) AdminHandler {
	return &adminHandler{
		authService:    authService,
		totpLogs:       totpLogs,
		commentService: commentService,
		log:            log,
	}
}

// Dashboard renders the admin page: the user list, code logs and comments
// (both newest first). A POST first creates an account from the form.
func (h *adminHandler) Dashboard(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		h.createUser(c)
	}

	users, err := h.authService.ListUsers()
	if err != nil {
		h.log.Errorf("Failed to list users: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	logs, err := h.totpLogs.ListNewestFirst()
	if err != nil {
		h.log.Errorf("Failed to list code logs: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	comments, err := h.commentService.List()
	if err != nil {
		h.log.Errorf("Failed to list comments: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	success, errs := takeFlashes(c)
	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"Users":        users,
		"Logs":         logs,
		"Comments":     comments,
		"FlashSuccess": success,
		"FlashErrors":  errs,
	})
}

func (h *adminHandler) createUser(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		addFlash(c, flashError, "Username and password are required.")
		return
	}

	user, err := h.authService.CreateUser(username, password)
	switch {
	case errors.Is(err, repository.ErrCapacityExceeded):
		addFlash(c, flashError, "Maximum limit of 5 users reached.")
	case errors.Is(err, repository.ErrDuplicateUsername):
		addFlash(c, flashError, "Username already exists.")
	case err != nil:
		addFlash(c, flashError, "Could not create the user. Please try again.")
	default:
		addFlash(c, flashSuccess, fmt.Sprintf("User %s created successfully!", user.Username))
	}
}

func (h *adminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	if err := h.authService.DeleteUser(id); err != nil {
		h.log.Errorf("Failed to delete user %d: %v", id, err)
		addFlash(c, flashError, "Could not delete the user. Please try again.")
	} else {
		addFlash(c, flashSuccess, "User deleted successfully!")
	}
	c.Redirect(http.StatusFound, "/admin_dashboard")
}

func (h *adminHandler) DeleteComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	if err := h.commentService.Delete(id); err != nil {
		h.log.Errorf("Failed to delete comment %d: %v", id, err)
		addFlash(c, flashError, "Could not delete the comment. Please try again.")
	} else {
		addFlash(c, flashSuccess, "Comment deleted successfully!")
	}
	c.Redirect(http.StatusFound, "/admin_dashboard")
}
