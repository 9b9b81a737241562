// Package books provides database operations for the book catalogue.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, total, err := repo.List(ctx, 0, 100)
//	book, err := repo.GetByID(ctx, 42)
package books

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
	ErrNotFound    = errors.New("book not found")
	ErrTitleExists = errors.New("book title already exists")
)

// Repository handles book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of books ordered by id together with the total count.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]entities.Book, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	books := []entities.Book{}
	err := db.Order("id ASC").Offset(skip).Limit(limit).Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// EscapeLike escapes LIKE wildcards so keyword is matched literally.
func EscapeLike(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(keyword)
}

// Search returns up to SearchLimit books whose title or authors contain
// keyword, ignoring case, best rated first.
func (r *Repository) Search(ctx context.Context, keyword string) ([]entities.Book, error) {
	pattern := "%" + strings.ToLower(EscapeLike(keyword)) + "%"

	books := []entities.Book{}
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(authors) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("rating DESC").
		Order("id ASC").
		Limit(SearchLimit).
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// FilterByGenres returns books whose genres value equals any of genres and
// the size of that set. An empty list matches nothing and skips the query.
func (r *Repository) FilterByGenres(ctx context.Context, genres []string) ([]entities.Book, int64, error) {
	books := []entities.Book{}
	if len(genres) == 0 {
		return books, 0, nil
	}

	query, args, err := sqlbuild.BooksByGenres(genres)
	if err != nil {
		return nil, 0, err
	}
	countQuery, countArgs, err := sqlbuild.CountBooksByGenres(genres)
	if err != nil {
		return nil, 0, err
	}

	db := r.db.WithContext(ctx)
	if err := db.Raw(query, args...).Scan(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to filter books by genre: %w", err)
	}
	var total int64
	if err := db.Raw(countQuery, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books by genre: %w", err)
	}
	return books, total, nil
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entities.Book, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func getByID(db *gorm.DB, id int64) (*entities.Book, error) {
	var book entities.Book
	err := db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

func titleTaken(tx *gorm.DB, title string, exceptID int64) (bool, error) {
	var count int64
	q := tx.Model(&entities.Book{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check book title: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new book. The rating always starts at zero.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	book.ID = 0
	book.Rating = 0

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := titleTaken(tx, book.Title, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrTitleExists
		}
		if err := tx.Create(book).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTitleExists
			}
			return fmt.Errorf("failed to create book: %w", err)
		}
		return nil
	})
}

// Update replaces every client-editable field of the book. The stored rating
// is kept.
func (r *Repository) Update(ctx context.Context, id int64, in *entities.Book) (*entities.Book, error) {
	var updated *entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := getByID(tx, id)
		if err != nil {
			return err
		}

		taken, err := titleTaken(tx, in.Title, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrTitleExists
		}

		book.Title = in.Title
		book.Authors = in.Authors
		book.Synopsis = in.Synopsis
		book.BuyLink = in.BuyLink
		book.Genres = in.Genres
		book.Editorial = in.Editorial
		book.Comments = in.Comments
		book.PublicationDate = in.PublicationDate
		book.Image = in.Image

		if err := tx.Save(book).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTitleExists
			}
			return fmt.Errorf("failed to update book %d: %w", id, err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a book along with its comment ratings and read-book rows.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getByID(tx, id); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.CommentRating{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of book %d: %w", id, err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReadBook{}).Error; err != nil {
			return fmt.Errorf("failed to delete read entries of book %d: %w", id, err)
		}
		if err := tx.Delete(&entities.Book{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete book %d: %w", id, err)
		}
		return nil
	})
}
