package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash categories mirror the page styling: green notices and red errors.
const (
	flashSuccess = "success"
	flashError   = "error"
)

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	_ = session.Save()
}

// takeFlashes drains both flash categories for rendering.
func takeFlashes(c *gin.Context) (success, errors []interface{}) {
	session := sessions.Default(c)
	success = session.Flashes(flashSuccess)
	errors = session.Flashes(flashError)
	_ = session.Save()
	return success, errors
}
