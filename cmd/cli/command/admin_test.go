package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

func newUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return repository.NewUserRepository(db)
}

func TestCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)

	u, err := createSuperuser(ctx, users, "root", "root@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
	assert.Equal(t, models.RoleAdmin, u.Role)

	stored, err := users.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, stored.IsSuperuser)

	_, err = createSuperuser(ctx, users, "root", "other@example.com")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCreateSuperuser_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)

	for name, args := range map[string][2]string{
		"reserved":  {"me", "me@example.com"},
		"bad email": {"root", "not-an-email"},
		"bad chars": {"root user", "root@example.com"},
		"empty":     {"", "root@example.com"},
	} {
		_, err := createSuperuser(ctx, users, args[0], args[1])
		assert.Error(t, err, name)
	}
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)
	require.NoError(t, users.Create(ctx, &models.User{Username: "reader", Email: "reader@example.com"}))

	u, err := setRole(ctx, users, "reader", models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, u.Role)

	stored, err := users.FindByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, stored.Role)

	_, err = setRole(ctx, users, "reader", "owner")
	assert.ErrorIs(t, err, errUnknownRole)

	_, err = setRole(ctx, users, "ghost", models.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)
	require.NoError(t, users.Create(ctx, &models.User{Username: "reader", Email: "reader@example.com", IsActive: true}))

	_, err := setActive(ctx, users, "reader", false)
	require.NoError(t, err)
	stored, err := users.FindByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	_, err = setActive(ctx, users, "reader", true)
	require.NoError(t, err)
	stored, err = users.FindByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}
