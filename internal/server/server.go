package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"otpdesk/internal/config"
	"otpdesk/internal/handler"
	"otpdesk/internal/middleware"
	"otpdesk/internal/models"
	"otpdesk/internal/notify"
	"otpdesk/internal/repository"
	"otpdesk/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// sessionName is the cookie carrying the session id.
const sessionName = "otpdesk_session"

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	log      *logrus.Logger
	zlog     *zap.Logger
	notifier *notify.Notifier
}

func NewServer(db *sqlx.DB, cfg *config.Config, log *logrus.Logger, zlog *zap.Logger, notifier *notify.Notifier) *Server {
	router := gin.Default()

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions(sessionName, store))

	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		log:      log,
		zlog:     zlog,
		notifier: notifier,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	userRepo := repository.NewUserRepository(s.db, s.zlog)
	codeLogRepo := repository.NewCodeLogRepository(s.db, s.zlog)
	commentRepo := repository.NewCommentRepository(s.db, s.zlog)

	authService := service.NewAuthService(userRepo, s.cfg.TOTP.Issuer, s.log)
	totpService := service.NewTOTPService(codeLogRepo, s.log)
	commentService := service.NewCommentService(commentRepo, s.notifier, s.log)

	authHandler := handler.NewAuthHandler(authService, s.log)
	adminHandler := handler.NewAdminHandler(authService, codeLogRepo, commentService, s.log)
	userHandler := handler.NewUserHandler(authService, totpService, commentService, s.log)
	syncHandler := handler.NewSyncHandler(userRepo, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	s.router.GET("/", authHandler.LoginPage)
	s.router.POST("/", authHandler.Login)

	// Device sync is read-only and unauthenticated; it trusts
	// network-level isolation.
	s.router.GET("/api/sync_users", syncHandler.SyncUsers)

	authed := s.router.Group("/")
	authed.Use(middleware.Authenticate(userRepo, s.zlog))
	{
		authed.GET("/logout", authHandler.Logout)

		admin := authed.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/admin_dashboard", adminHandler.Dashboard)
			admin.POST("/admin_dashboard", adminHandler.Dashboard)
			admin.POST("/delete_user/:id", adminHandler.DeleteUser)
			admin.POST("/delete_comment/:id", adminHandler.DeleteComment)
		}

		user := authed.Group("/")
		user.Use(middleware.RequireRole(models.RoleUser))
		{
			user.GET("/user_dashboard", userHandler.Dashboard)
			user.POST("/user_dashboard", userHandler.Dashboard)
			user.POST("/user/change_password", userHandler.ChangePassword)
		}
	}
}

// Router exposes the underlying engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("Server shutdown failed: %v", err)
		}
	}()

	s.log.Infof("Server starting on %s...", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
