// Package readbooks records which users have read which books.
package readbooks

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/bookshelf/internal/entities"
)

var (
	ErrNotFound     = errors.New("read entry not found")
	ErrExists       = errors.New("read entry already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrBookNotFound = errors.New("book not found")
)

// Repository handles read-book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new readbooks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func exists(tx *gorm.DB, model interface{}, id int64) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create marks the book as read by the user.
func (r *Repository) Create(ctx context.Context, userID, bookID int64) (*entities.ReadBook, error) {
	entry := &entities.ReadBook{UserID: userID, BookID: bookID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &entities.User{}, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}
		ok, err = exists(tx, &entities.Book{}, bookID)
		if err != nil {
			return fmt.Errorf("failed to check book: %w", err)
		}
		if !ok {
			return ErrBookNotFound
		}

		var count int64
		if err := tx.Model(&entities.ReadBook{}).
			Where("user_id = ? AND book_id = ?", userID, bookID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check read entry: %w", err)
		}
		if count > 0 {
			return ErrExists
		}

		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrExists
			}
			return fmt.Errorf("failed to create read entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns the entry for the pair.
func (r *Repository) Get(ctx context.Context, userID, bookID int64) (*entities.ReadBook, error) {
	var entry entities.ReadBook
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get read entry: %w", err)
	}
	return &entry, nil
}

// Delete removes the entry for the pair.
func (r *Repository) Delete(ctx context.Context, userID, bookID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.ReadBook{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete read entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
