package users

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/librarium/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func newUser(username string) *entities.User {
	return &entities.User{
		Name:         "Name " + username,
		Surname:      "Surname",
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash-" + username,
	}
}

func ptr(s string) *string { return &s }

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	user := newUser("ada")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", byID.Username)
	assert.Equal(t, "hash-ada", byID.PasswordHash)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Create_Duplicates(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("ada")))

	t.Run("email", func(t *testing.T) {
		u := newUser("other")
		u.Email = "ada@example.com"
		assert.ErrorIs(t, repo.Create(ctx, u), ErrEmailExists)
	})

	t.Run("username", func(t *testing.T) {
		u := newUser("ada")
		u.Email = "fresh@example.com"
		assert.ErrorIs(t, repo.Create(ctx, u), ErrUsernameExists)
	})

	_, total, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRepository_ListAndSearch(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Create(ctx, newUser(fmt.Sprintf("reader%d", i))))
	}
	require.NoError(t, repo.Create(ctx, newUser("zed")))

	page, total, err := repo.List(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
	require.Len(t, page, 3)
	assert.Equal(t, "reader2", page[0].Username)

	found, err := repo.Search(ctx, "READER")
	require.NoError(t, err)
	assert.Len(t, found, SearchLimit)

	found, err = repo.Search(ctx, "name ze")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "zed", found[0].Username)
}

func TestRepository_Update(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	user := newUser("ada")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Create(ctx, newUser("grace")))

	t.Run("only supplied fields change", func(t *testing.T) {
		updated, err := repo.Update(ctx, user.ID, Changes{Name: ptr("Augusta"), PasswordHash: ptr("new-hash")})
		require.NoError(t, err)
		assert.Equal(t, "Augusta", updated.Name)
		assert.Equal(t, "Surname", updated.Surname)
		assert.Equal(t, "ada", updated.Username)
		assert.Equal(t, "new-hash", updated.PasswordHash)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := repo.Update(ctx, user.ID, Changes{})
		assert.ErrorIs(t, err, ErrNoFields)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.Update(ctx, 999, Changes{Name: ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("email of another user", func(t *testing.T) {
		_, err := repo.Update(ctx, user.ID, Changes{Email: ptr("grace@example.com")})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("username of another user", func(t *testing.T) {
		_, err := repo.Update(ctx, user.ID, Changes{Username: ptr("grace")})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("own email is allowed", func(t *testing.T) {
		updated, err := repo.Update(ctx, user.ID, Changes{Email: ptr("ada@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", updated.Email)
	})
}
