package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathsoc-club/backend/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeedCreatesAdmin(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:dbtest_seed?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)

	seed := SeedConfig{AdminUsername: "admin", AdminEmail: "admin@mathsoc.example", AdminPassword: "correct horse"}
	require.NoError(t, AutoMigrateAndSeed(db, seed))

	var user models.User
	require.NoError(t, db.First(&user, "username = ?", "admin").Error)
	require.True(t, user.IsAdmin)
	require.NotEqual(t, "correct horse", user.PasswordHash)

	// Re-seeding must not duplicate or overwrite the account.
	require.NoError(t, AutoMigrateAndSeed(db, seed))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSeedRequiresPasswordWithUsername(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:dbtest_nopass?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	err = SeedData(db, SeedConfig{AdminUsername: "admin"})
	require.Error(t, err)
}

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "mathsoc", Name: "mathsoc"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "mathsoc", Password: "secret", Name: "mathsoc"})
	require.NoError(t, err)
	require.Contains(t, dsn, "mathsoc:secret@tcp(127.0.0.1:3306)/mathsoc")
	require.Contains(t, dsn, "parseTime=True")
}
