package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"otpdesk/internal/models"
	"otpdesk/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.MigrateDB(db, zap.NewNop()))
	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, repository.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewUserRepository(newTestDB(t), zap.NewNop())

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	// Helper route that logs a user id into the session.
	r.GET("/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		require.NoError(t, err)
		session.Set(SessionUserKey, id)
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	authed := r.Group("/", Authenticate(users, zap.NewNop()))
	authed.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "admin ok")
	})
	authed.GET("/user", RequireRole(models.RoleUser), func(c *gin.Context) {
		c.String(http.StatusOK, "user ok: "+CurrentUser(c).Username)
	})

	return r, users
}

func createUser(t *testing.T, users repository.UserRepository, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x", Role: role, CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(u))
	return u
}

func loginCookies(t *testing.T, r *gin.Engine, id int64) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login/"+strconv.FormatInt(id, 10), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func doGet(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doGet(r, "/user", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRoleEnforced(t *testing.T) {
	r, users := newTestRouter(t)
	user := createUser(t, users, "alice", models.RoleUser)
	cookies := loginCookies(t, r, user.ID)

	w := doGet(r, "/user", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// A user-role session is terminally denied on admin routes.
	w = doGet(r, "/admin", cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access Denied", w.Body.String())
}

func TestAdminRole(t *testing.T) {
	r, users := newTestRouter(t)
	admin := createUser(t, users, "admin", models.RoleAdmin)
	cookies := loginCookies(t, r, admin.ID)

	w := doGet(r, "/admin", cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "/user", cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// A session whose user was deleted is cleared and redirected, not served.
func TestStaleSessionCleared(t *testing.T) {
	r, users := newTestRouter(t)
	user := createUser(t, users, "alice", models.RoleUser)
	cookies := loginCookies(t, r, user.ID)

	require.NoError(t, users.Delete(user.ID))

	w := doGet(r, "/user", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
