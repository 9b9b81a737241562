// Package comments stores per-book comments with a 1..5 rating.
//
// Every insert and delete recomputes the owning book's rating in the same
// transaction through the rating package.
package comments

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/librarium/bookshelf/internal/entities"
	"github.com/librarium/bookshelf/internal/rating"
)

var (
	ErrNotFound      = errors.New("comment not found")
	ErrBookNotFound  = errors.New("book not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Repository handles comment/rating database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new comments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func bookExists(tx *gorm.DB, bookID int64) error {
	var count int64
	if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check book: %w", err)
	}
	if count == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Create adds a comment to a book and refreshes the book's rating. The
// returned comment carries the author's username.
func (r *Repository) Create(ctx context.Context, bookID, userID int64, comment string, value int) (*entities.CommentRating, error) {
	if !entities.ValidRating(value) {
		return nil, ErrInvalidRating
	}

	cr := &entities.CommentRating{
		BookID:  bookID,
		UserID:  userID,
		Comment: comment,
		Rating:  value,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bookExists(tx, bookID); err != nil {
			return err
		}

		var user entities.User
		if err := tx.Select("id", "username").Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to check user: %w", err)
		}

		if err := tx.Create(cr).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		cr.Username = user.Username

		return rating.Recompute(tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// ListForBook returns the book's comments in insertion order, each with the
// author's username.
func (r *Repository) ListForBook(ctx context.Context, bookID int64) ([]entities.CommentRating, error) {
	db := r.db.WithContext(ctx)
	if err := bookExists(db, bookID); err != nil {
		return nil, err
	}

	rows := []entities.CommentRating{}
	err := db.Table("comment_ratings AS cr").
		Select("cr.id, cr.user_id, cr.book_id, cr.comment, cr.rating, COALESCE(u.username, '') AS username").
		Joins("LEFT JOIN users u ON u.id = cr.user_id").
		Where("cr.book_id = ?", bookID).
		Order("cr.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return rows, nil
}

// Delete removes a comment and refreshes its book's rating.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cr entities.CommentRating
		if err := tx.Select("id", "book_id").Where("id = ?", id).First(&cr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get comment %d: %w", id, err)
		}

		if err := tx.Delete(&entities.CommentRating{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete comment %d: %w", id, err)
		}

		return rating.Recompute(tx, cr.BookID)
	})
}
