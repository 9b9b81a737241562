package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/database/comments"
	"github.com/librarium/bookshelf/internal/entities"
)

const (
	msgInvalidRating    = "Rating must be between 1 and 5."
	msgBookNotFound     = "Book not found."
	msgUserNotFound     = "User not found."
	msgCommentNotFound  = "Comment not found."
	msgCommentAdded     = "Comment and rating successfully added."
	msgCommentDeleted   = "Comment successfully deleted."
	msgNoCommentsOnBook = "No comments or ratings found for this book."
)

// CommentStore is the subset of the comments repository the controller needs.
type CommentStore interface {
	Create(ctx context.Context, bookID, userID int64, comment string, value int) (*entities.CommentRating, error)
	ListForBook(ctx context.Context, bookID int64) ([]entities.CommentRating, error)
	Delete(ctx context.Context, id int64) error
}

type CommentsController struct {
	store CommentStore
}

func NewCommentsController(store CommentStore) *CommentsController {
	return &CommentsController{
		store: store,
	}
}

// queryReader collects missing or non-integer query parameters into one 422.
type queryReader struct {
	c       *gin.Context
	details []FieldError
}

func (q *queryReader) missing(name string) {
	q.details = append(q.details, FieldError{Loc: []string{"query", name}, Message: msgFieldRequired})
}

func (q *queryReader) String(name string) string {
	v, ok := q.c.GetQuery(name)
	if !ok {
		q.missing(name)
	}
	return v
}

func (q *queryReader) Int64(name string) int64 {
	raw, ok := q.c.GetQuery(name)
	if !ok {
		q.missing(name)
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.details = append(q.details, FieldError{Loc: []string{"query", name}, Message: msgInvalidInteger})
	}
	return n
}

// ok writes the collected 422 if anything was wrong.
func (q *queryReader) ok() bool {
	if len(q.details) == 0 {
		return true
	}
	respondValidation(q.c, q.details[0].Message, q.details)
	return false
}

// POST /api/v1/books/books/:id/comments?user_id=&comment=&rating=
func (controller *CommentsController) Create(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	q := &queryReader{c: c}
	userID := q.Int64("user_id")
	comment := q.String("comment")
	value := q.Int64("rating")
	if !q.ok() {
		return
	}
	if value < entities.MinRating || value > entities.MaxRating {
		respondBadRequest(c, msgInvalidRating)
		return
	}

	cr, err := controller.store.Create(c.Request.Context(), bookID, userID, comment, int(value))
	if err != nil {
		switch {
		case errors.Is(err, comments.ErrInvalidRating):
			respondBadRequest(c, msgInvalidRating)
		case errors.Is(err, comments.ErrBookNotFound):
			respondNotFound(c, msgBookNotFound)
		case errors.Is(err, comments.ErrUserNotFound):
			respondNotFound(c, msgUserNotFound)
		default:
			respondInternalError(c, err, "create comment")
		}
		return
	}
	respondMessage(c, msgCommentAdded, cr)
}

// GET /api/v1/books/CommentRatingPerBook/:id
func (controller *CommentsController) ListForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := controller.store.ListForBook(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, comments.ErrBookNotFound) {
			respondNotFound(c, msgBookNotFound)
			return
		}
		respondInternalError(c, err, "list comments")
		return
	}
	if len(rows) == 0 {
		respondMessage(c, msgNoCommentsOnBook, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": rows})
}

// DELETE /api/v1/books/CommentRatingPerBook/:id
func (controller *CommentsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, comments.ErrNotFound) {
			respondNotFound(c, msgCommentNotFound)
			return
		}
		respondInternalError(c, err, "delete comment")
		return
	}
	respondMessage(c, msgCommentDeleted, nil)
}
