package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidInteger = "Input should be a valid integer, unable to parse string as an integer"
	msgFieldRequired  = "Field required"
	msgInvalidBody    = "Request body is not valid JSON for this endpoint"

	defaultSkip  = 0
	defaultLimit = 100
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation problems
}

// FieldError describes one invalid input location.
type FieldError struct {
	Loc     []string `json:"loc"`
	Message string   `json:"msg"`
}

// MessageResponse is a confirmation with optional data.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps a page or search result with its count.
type ListResponse struct {
	Data  any   `json:"data"`
	Count int64 `json:"count"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Detail: message, Code: "bad_request"})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Detail: message, Code: "not_found"})
}

func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Detail: message, Code: "conflict"})
}

func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Detail: message, Code: "forbidden"})
}

func respondValidation(c *gin.Context, message string, details []FieldError) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Detail:  message,
		Code:    "validation_error",
		Details: details,
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) request_id=%s: %v", context, RequestID(c), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal server error", Code: "internal"})
}

// --- Success Response Helpers ---

func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, MessageResponse{Message: message, Data: data})
}

func respondList(c *gin.Context, data any, count int64) {
	c.JSON(http.StatusOK, ListResponse{Data: data, Count: count})
}

// --- Parameter Parsing ---

// parseIDParam extracts a signed integer ID from URL parameters. Negative
// values parse fine and simply match nothing. Malformed input gets a 422.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil {
		respondValidation(c, msgInvalidInteger, []FieldError{{Loc: []string{"path", paramName}, Message: msgInvalidInteger}})
		return 0, false
	}
	return id, true
}

// parseQueryInt reads an optional non-negative integer query parameter.
func parseQueryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondValidation(c, msgInvalidInteger, []FieldError{{Loc: []string{"query", name}, Message: msgInvalidInteger}})
		return 0, false
	}
	if n < 0 {
		msg := "Input should be greater than or equal to 0"
		respondValidation(c, msg, []FieldError{{Loc: []string{"query", name}, Message: msg}})
		return 0, false
	}
	return n, true
}

// parsePagination reads skip and limit with their defaults.
func parsePagination(c *gin.Context) (skip, limit int, ok bool) {
	if skip, ok = parseQueryInt(c, "skip", defaultSkip); !ok {
		return 0, 0, false
	}
	if limit, ok = parseQueryInt(c, "limit", defaultLimit); !ok {
		return 0, 0, false
	}
	return skip, limit, true
}

// respondBindError turns a gin binding failure into a 422 with field details.
func respondBindError(c *gin.Context, err error, source string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Loc:     []string{source, fieldName(fe)},
				Message: validationMessage(fe),
			})
		}
		respondValidation(c, details[0].Message, details)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg := "Input should be a valid " + typeErr.Type.String()
		respondValidation(c, msg, []FieldError{{Loc: []string{source, typeErr.Field}, Message: msg}})
		return
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		respondValidation(c, msgInvalidInteger, []FieldError{{Loc: []string{source}, Message: msgInvalidInteger}})
		return
	}

	respondValidation(c, msgInvalidBody, nil)
}

func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgFieldRequired
	case "email":
		return "Value is not a valid email address"
	case "min":
		return "Value should have at least " + fe.Param() + " characters"
	case "max":
		return "Value should have at most " + fe.Param() + " characters"
	case "gte", "lte":
		return "Input is out of range"
	default:
		return "Invalid value"
	}
}
