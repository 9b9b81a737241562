// Package users provides database operations for user management.
//
// Passwords arrive here already hashed; the repository never sees plaintext.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "test@test")
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/librarium/bookshelf/internal/database/sqlbuild"
	"github.com/librarium/bookshelf/internal/entities"
)

// SearchLimit caps keyword search results.
const SearchLimit = 5

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrNoFields       = errors.New("no fields to update")
)

// Changes holds the fields of a partial update; nil means unchanged.
type Changes struct {
	Name         *string
	Surname      *string
	Username     *string
	Email        *string
	PasswordHash *string
}

func (c Changes) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("name", c.Name)
	set("surname", c.Surname)
	set("username", c.Username)
	set("email", c.Email)
	set("password", c.PasswordHash)
	return cols
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of users ordered by id together with the total count.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]entities.User, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&entities.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []entities.User{}
	if err := db.Order("id ASC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Search returns up to SearchLimit users whose name, surname or username
// contains keyword, ignoring case.
func (r *Repository) Search(ctx context.Context, keyword string) ([]entities.User, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	pattern := "%" + strings.ToLower(escaped) + "%"

	users := []entities.User{}
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(surname) LIKE ? ESCAPE '\' OR LOWER(username) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
		Order("id ASC").
		Limit(SearchLimit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByEmail retrieves a user by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return first(r.db.WithContext(ctx).Where("email = ?", email))
}

func first(q *gorm.DB) (*entities.User, error) {
	var user entities.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func taken(tx *gorm.DB, column, value string, exceptID int64) (bool, error) {
	var count int64
	q := tx.Model(&entities.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return count > 0, nil
}

func checkUnique(tx *gorm.DB, email, username *string, exceptID int64) error {
	if email != nil {
		exists, err := taken(tx, "email", *email, exceptID)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}
	}
	if username != nil {
		exists, err := taken(tx, "username", *username, exceptID)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameExists
		}
	}
	return nil
}

// Create inserts a user whose PasswordHash is already set. Email is checked
// before username.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	user.ID = 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &user.Email, &user.Username, 0); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// Update applies the non-nil fields of changes and returns the stored user.
func (r *Repository) Update(ctx context.Context, id int64, changes Changes) (*entities.User, error) {
	cols := changes.columns()
	if len(cols) == 0 {
		return nil, ErrNoFields
	}

	var updated *entities.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := first(tx.Where("id = ?", id)); err != nil {
			return err
		}
		if err := checkUnique(tx, changes.Email, changes.Username, id); err != nil {
			return err
		}

		query, args, err := sqlbuild.UpdateUser(id, cols)
		if err != nil {
			return err
		}
		if err := tx.Exec(query, args...).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}

		updated, err = first(tx.Where("id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
