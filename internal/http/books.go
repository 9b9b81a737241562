package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/database/books"
	"github.com/librarium/bookshelf/internal/entities"
)

const (
	msgBookNotFoundByID = "Book not found with the provided id"
	msgBookTitleExists  = "The book with this title already exists in the system."
	msgBookDeleted      = "Book successfully deleted."
)

// BookStore is the subset of the books repository the controller needs.
type BookStore interface {
	List(ctx context.Context, skip, limit int) ([]entities.Book, int64, error)
	Search(ctx context.Context, keyword string) ([]entities.Book, error)
	FilterByGenres(ctx context.Context, genres []string) ([]entities.Book, int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	Update(ctx context.Context, id int64, in *entities.Book) (*entities.Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookInput is the body accepted by create and update. Any rating sent by the
// client is ignored; it is derived from comments.
type BookInput struct {
	Title           string `json:"title" binding:"required,max=512"`
	Authors         string `json:"authors" binding:"max=512"`
	Synopsis        string `json:"synopsis"`
	BuyLink         string `json:"buy_link" binding:"max=2048"`
	Genres          string `json:"genres" binding:"max=256"`
	Editorial       string `json:"editorial" binding:"max=256"`
	Comments        string `json:"comments"`
	PublicationDate string `json:"publication_date"`
	Image           string `json:"image" binding:"max=2048"`
}

var publicationDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublicationDate accepts the date formats clients have been observed
// to send. An empty value means "unknown" and maps to the zero time.
func parsePublicationDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range publicationDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid publication_date")
}

func (in BookInput) toEntity() (*entities.Book, error) {
	published, err := parsePublicationDate(in.PublicationDate)
	if err != nil {
		return nil, err
	}
	return &entities.Book{
		Title:           strings.TrimSpace(in.Title),
		Authors:         in.Authors,
		Synopsis:        in.Synopsis,
		BuyLink:         in.BuyLink,
		Genres:          in.Genres,
		Editorial:       in.Editorial,
		Comments:        in.Comments,
		PublicationDate: published,
		Image:           in.Image,
	}, nil
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store: store,
	}
}

// bindBook binds and converts the request body, writing a 422 on failure.
func bindBook(c *gin.Context) (*entities.Book, bool) {
	var in BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err, "body")
		return nil, false
	}
	if strings.TrimSpace(in.Title) == "" {
		respondValidation(c, msgFieldRequired, []FieldError{{Loc: []string{"body", "title"}, Message: msgFieldRequired}})
		return nil, false
	}
	book, err := in.toEntity()
	if err != nil {
		msg := "Input should be a valid datetime or date"
		respondValidation(c, msg, []FieldError{{Loc: []string{"body", "publication_date"}, Message: msg}})
		return nil, false
	}
	return book, true
}

// GET /api/v1/books?skip=&limit=
func (controller *BooksController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	items, count, err := controller.store.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	respondList(c, items, count)
}

// GET /api/v1/books/:keyword
func (controller *BooksController) Search(c *gin.Context) {
	items, err := controller.store.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	respondList(c, items, int64(len(items)))
}

// POST /api/v1/books/filter-by-genres
func (controller *BooksController) FilterByGenres(c *gin.Context) {
	var genres []string
	if err := c.ShouldBindJSON(&genres); err != nil {
		respondBindError(c, err, "body")
		return
	}

	items, count, err := controller.store.FilterByGenres(c.Request.Context(), genres)
	if err != nil {
		respondInternalError(c, err, "filter books by genres")
		return
	}
	respondList(c, items, count)
}

// GET /api/v1/books/book/:id
func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, msgBookNotFoundByID)
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// POST /api/v1/books
func (controller *BooksController) Create(c *gin.Context) {
	book, ok := bindBook(c)
	if !ok {
		return
	}

	if err := controller.store.Create(c.Request.Context(), book); err != nil {
		if errors.Is(err, books.ErrTitleExists) {
			respondConflict(c, msgBookTitleExists)
			return
		}
		respondInternalError(c, err, "create book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// PUT /api/v1/books/:id
func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "keyword")
	if !ok {
		return
	}
	in, ok := bindBook(c)
	if !ok {
		return
	}

	book, err := controller.store.Update(c.Request.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound):
			respondNotFound(c, msgBookNotFoundByID)
		case errors.Is(err, books.ErrTitleExists):
			respondConflict(c, msgBookTitleExists)
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}
	c.JSON(http.StatusOK, book)
}

// DELETE /api/v1/books/:id
func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "keyword")
	if !ok {
		return
	}

	if err := controller.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, msgBookNotFoundByID)
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}
	respondMessage(c, msgBookDeleted, nil)
}
