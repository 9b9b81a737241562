package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/database/readbooks"
	"github.com/librarium/bookshelf/internal/entities"
)

const (
	msgEntryNotFound = "Entry not found"
	msgEntryExists   = "This book is already marked as read by the user."
)

// ReadBookStore is the subset of the readbooks repository the controller needs.
type ReadBookStore interface {
	Create(ctx context.Context, userID, bookID int64) (*entities.ReadBook, error)
	Get(ctx context.Context, userID, bookID int64) (*entities.ReadBook, error)
	Delete(ctx context.Context, userID, bookID int64) error
}

type ReadBookInput struct {
	UserID *int64 `json:"id_user" binding:"required"`
	BookID *int64 `json:"id_book" binding:"required"`
}

type ReadBooksController struct {
	store ReadBookStore
}

func NewReadBooksController(store ReadBookStore) *ReadBooksController {
	return &ReadBooksController{
		store: store,
	}
}

func parsePairParams(c *gin.Context) (userID, bookID int64, ok bool) {
	if userID, ok = parseIDParam(c, "user_id"); !ok {
		return 0, 0, false
	}
	if bookID, ok = parseIDParam(c, "book_id"); !ok {
		return 0, 0, false
	}
	return userID, bookID, true
}

// POST /api/v1/readbooks
func (controller *ReadBooksController) Create(c *gin.Context) {
	var in ReadBookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err, "body")
		return
	}

	entry, err := controller.store.Create(c.Request.Context(), *in.UserID, *in.BookID)
	if err != nil {
		switch {
		case errors.Is(err, readbooks.ErrUserNotFound):
			respondNotFound(c, msgUserNotFound)
		case errors.Is(err, readbooks.ErrBookNotFound):
			respondNotFound(c, msgBookNotFound)
		case errors.Is(err, readbooks.ErrExists):
			respondConflict(c, msgEntryExists)
		default:
			respondInternalError(c, err, "create read entry")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GET /api/v1/readbooks/:user_id/:book_id
func (controller *ReadBooksController) Get(c *gin.Context) {
	userID, bookID, ok := parsePairParams(c)
	if !ok {
		return
	}

	entry, err := controller.store.Get(c.Request.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, readbooks.ErrNotFound) {
			respondNotFound(c, msgEntryNotFound)
			return
		}
		respondInternalError(c, err, "get read entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DELETE /api/v1/readbooks/:user_id/:book_id
func (controller *ReadBooksController) Delete(c *gin.Context) {
	userID, bookID, ok := parsePairParams(c)
	if !ok {
		return
	}

	if err := controller.store.Delete(c.Request.Context(), userID, bookID); err != nil {
		if errors.Is(err, readbooks.ErrNotFound) {
			respondNotFound(c, msgEntryNotFound)
			return
		}
		respondInternalError(c, err, "delete read entry")
		return
	}
	c.JSON(http.StatusOK, true)
}
