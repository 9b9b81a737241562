package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "readbooks", "comment_ratings"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabase_PostgresRequiresDSN(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: config.DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestDatabase_Seed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("creates test user and book", func(t *testing.T) {
		require.NoError(t, db.Seed(ctx, bcrypt.MinCost))

		var user entities.User
		require.NoError(t, db.DB.Where("email = ?", "test@test").First(&user).Error)
		assert.Equal(t, "test", user.Username)
		assert.Equal(t, "Test", user.Name)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("test")))

		var book entities.Book
		require.NoError(t, db.DB.Where("title = ?", "Test Book").First(&book).Error)
		assert.Equal(t, "Test Book", book.Genres)
		assert.Equal(t, "test", book.Image)
		assert.Zero(t, book.Rating)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, db.Seed(ctx, bcrypt.MinCost))

		var users, books int64
		db.DB.Model(&entities.User{}).Count(&users)
		db.DB.Model(&entities.Book{}).Count(&books)
		assert.Equal(t, int64(1), users)
		assert.Equal(t, int64(1), books)
	})
}
