package repository

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"otpdesk/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, MigrateDB(db, zap.NewNop()))
	return db
}

func testUser(name string) *models.User {
	return &models.User{
		Username:     name,
		PasswordHash: "x",
		Role:         models.RoleUser,
		SecretCode:   "JBSWY3DPEHPK3PXP",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	user := testUser("alice")
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	got, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", got.SecretCode)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepositoryGetMissing(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	_, err := repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(testUser("alice")))
	err := repo.Create(testUser("alice"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	count, err := repo.CountByRole(models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserRepositoryCapacity(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	for i := 0; i < MaxUserAccounts; i++ {
		require.NoError(t, repo.Create(testUser(fmt.Sprintf("user%d", i))))
	}

	err := repo.Create(testUser("overflow"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The cap is against the current count, not the historical total.
	u, err := repo.GetByUsername("user0")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(u.ID))
	require.NoError(t, repo.Create(testUser("replacement")))

	err = repo.Create(testUser("overflow"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestUserRepositoryCapacityIgnoresAdmins(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	for i := 0; i < MaxUserAccounts; i++ {
		require.NoError(t, repo.Create(testUser(fmt.Sprintf("user%d", i))))
	}

	admin := testUser("admin")
	admin.Role = models.RoleAdmin
	admin.SecretCode = ""
	assert.NoError(t, repo.Create(admin))
}

func TestUserRepositoryDeleteMissingIsNoop(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())
	assert.NoError(t, repo.Delete(12345))
}

func TestUserRepositoryListByRole(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	admin := testUser("admin")
	admin.Role = models.RoleAdmin
	require.NoError(t, repo.Create(admin))
	require.NoError(t, repo.Create(testUser("alice")))
	require.NoError(t, repo.Create(testUser("bob")))

	users, err := repo.ListByRole(models.RoleUser)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	admins, err := repo.ListByRole(models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	user := testUser("alice")
	require.NoError(t, repo.Create(user))
	require.NoError(t, repo.UpdatePassword(user.ID, "new-hash"))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
}
