package handler

import (
	"errors"
	"net/http"

	"otpdesk/internal/middleware"
	"otpdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler interface {
	Dashboard(c *gin.Context)
	ChangePassword(c *gin.Context)
}

type userHandler struct {
	authService    service.AuthService
	totpService    service.TOTPService
	commentService service.CommentService
	log            *logrus.Logger
}

func NewUserHandler(authService service.AuthService, totpService service.TOTPService, commentService service.CommentService, log *logrus.Logger) UserHandler {
	return &userHandler{
		authService:    authService,
		totpService:    totpService,
		commentService: commentService,
		log:            log,
	}
}

// Dashboard renders the user page. POST actions either generate a code
// (displayed inline) or submit a comment to the admin.
func (h *userHandler) Dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var code string
	if c.Request.Method == http.MethodPost {
		switch c.PostForm("action") {
		case "generate_code":
			var err error
			code, err = h.totpService.IssueCode(user)
			switch {
			case errors.Is(err, service.ErrLogWriteFailed):
				// The code is still shown: the device recomputes it from
				// the synced secret, only the audit row is missing.
				addFlash(c, flashError, "Error logging the code request.")
			case err != nil:
				h.log.Errorf("Failed to issue code for %q: %v", user.Username, err)
				addFlash(c, flashError, "Could not generate a code. Please try again.")
			default:
				addFlash(c, flashSuccess, "New security code generated and logged!")
			}
		case "send_comment":
			comment, err := h.commentService.Post(user, c.PostForm("comment_text"))
			if err != nil {
				addFlash(c, flashError, "Could not send the comment. Please try again.")
			} else if comment != nil {
				addFlash(c, flashSuccess, "Comment sent to admin!")
			}
		}
	}

	success, errs := takeFlashes(c)
	c.HTML(http.StatusOK, "user_dashboard.html", gin.H{
		"Username":     user.Username,
		"Code":         code,
		"FlashSuccess": success,
		"FlashErrors":  errs,
	})
}

func (h *userHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	err := h.authService.ChangePassword(
		user,
		c.PostForm("current_password"),
		c.PostForm("new_password"),
		c.PostForm("confirm_password"),
	)
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		addFlash(c, flashError, "Current password is incorrect.")
	case errors.Is(err, service.ErrPasswordMismatch):
		addFlash(c, flashError, "New passwords do not match.")
	case err != nil:
		h.log.Errorf("Failed to change password for %q: %v", user.Username, err)
		addFlash(c, flashError, "Could not update the password. Please try again.")
	default:
		addFlash(c, flashSuccess, "Password updated successfully!")
	}
	c.Redirect(http.StatusFound, "/user_dashboard")
}
