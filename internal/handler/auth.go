package handler

import (
	"errors"
	"net/http"

	"otpdesk/internal/middleware"
	"otpdesk/internal/models"
	"otpdesk/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	LoginPage(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, log: log}
}

func (h *authHandler) LoginPage(c *gin.Context) {
	success, errs := takeFlashes(c)
	c.HTML(http.StatusOK, "login.html", gin.H{
		"FlashSuccess": success,
		"FlashErrors":  errs,
	})
}

// Login verifies the submitted form credentials, binds the session to the
// account and redirects by role. Failures flash one generic message.
func (h *authHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Errorf("Login failed for %q: %v", username, err)
		}
		addFlash(c, flashError, "Invalid credentials. Please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.log.Errorf("Failed to save session for %q: %v", username, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if user.Role == models.RoleAdmin {
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/user_dashboard")
}

func (h *authHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserKey)
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}
