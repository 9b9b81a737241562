package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/database/users"
	"github.com/librarium/bookshelf/internal/entities"
)

const (
	msgUserNotFoundByID    = "User not found with the provided id"
	msgUserNotFoundByEmail = "User not found with the provided email"
	msgUserEmailExists     = "The user with this email already exists in the system."
	msgUserUsernameExists  = "The user with this username already exists in the system."
	msgRegistrationClosed  = "Open user registration is forbidden on this server"
	msgNoFieldsToUpdate    = "No fields to update."
	msgPasswordTooLong     = "Password must be at most 72 bytes."
)

// UserStore is the subset of the users repository the controller needs.
type UserStore interface {
	List(ctx context.Context, skip, limit int) ([]entities.User, int64, error)
	Search(ctx context.Context, keyword string) ([]entities.User, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, id int64, changes users.Changes) (*entities.User, error)
}

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// UserNotifier is told about every user created through the API.
type UserNotifier interface {
	UserCreated(ctx context.Context, user *entities.User) error
}

type UserCreateInput struct {
	Name     string `json:"name" binding:"max=100"`
	Surname  string `json:"surname" binding:"max=100"`
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

// UserUpdateInput carries a partial update; absent fields stay untouched.
type UserUpdateInput struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Surname  *string `json:"surname" binding:"omitempty,max=100"`
	Username *string `json:"username" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=1"`
}

type UsersController struct {
	store            UserStore
	hasher           PasswordHasher
	notifier         UserNotifier
	openRegistration bool
}

func NewUsersController(store UserStore, hasher PasswordHasher, notifier UserNotifier, openRegistration bool) *UsersController {
	return &UsersController{
		store:            store,
		hasher:           hasher,
		notifier:         notifier,
		openRegistration: openRegistration,
	}
}

// respondUserWriteError maps repository and hashing failures shared by
// create and update.
func respondUserWriteError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		respondNotFound(c, msgUserNotFoundByID)
	case errors.Is(err, users.ErrEmailExists):
		respondConflict(c, msgUserEmailExists)
	case errors.Is(err, users.ErrUsernameExists):
		respondConflict(c, msgUserUsernameExists)
	case errors.Is(err, users.ErrNoFields):
		respondBadRequest(c, msgNoFieldsToUpdate)
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondValidation(c, msgPasswordTooLong, []FieldError{{Loc: []string{"body", "password"}, Message: msgPasswordTooLong}})
	default:
		respondInternalError(c, err, action)
	}
}

// GET /api/v1/users?skip=&limit=
func (controller *UsersController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	items, count, err := controller.store.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	respondList(c, items, count)
}

// GET /api/v1/users/:keyword
func (controller *UsersController) Search(c *gin.Context) {
	items, err := controller.store.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		respondInternalError(c, err, "search users")
		return
	}
	respondList(c, items, int64(len(items)))
}

// GET /api/v1/users/by-id/:id
func (controller *UsersController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, msgUserNotFoundByID)
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/v1/users/by-email?email= and /api/v1/users/by-email/:email
func (controller *UsersController) GetByEmail(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		email = c.Query("email")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		respondValidation(c, msgFieldRequired, []FieldError{{Loc: []string{"query", "email"}, Message: msgFieldRequired}})
		return
	}

	user, err := controller.store.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, msgUserNotFoundByEmail)
			return
		}
		respondInternalError(c, err, "get user by email")
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /api/v1/users
func (controller *UsersController) Create(c *gin.Context) {
	controller.create(c)
}

// POST /api/v1/users/open
func (controller *UsersController) CreateOpen(c *gin.Context) {
	if !controller.openRegistration {
		respondForbidden(c, msgRegistrationClosed)
		return
	}
	controller.create(c)
}

func (controller *UsersController) create(c *gin.Context) {
	var in UserCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err, "body")
		return
	}

	hash, err := controller.hasher.HashPassword(in.Password)
	if err != nil {
		respondUserWriteError(c, err, "hash password")
		return
	}

	user := &entities.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
	}
	if err := controller.store.Create(c.Request.Context(), user); err != nil {
		respondUserWriteError(c, err, "create user")
		return
	}

	if controller.notifier != nil {
		if err := controller.notifier.UserCreated(c.Request.Context(), user); err != nil {
			log.Printf("Failed to notify about new user %d: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusOK, user)
}

// PUT /api/v1/users/:id
func (controller *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "keyword")
	if !ok {
		return
	}

	var in UserUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err, "body")
		return
	}

	changes := users.Changes{
		Name:     in.Name,
		Surname:  in.Surname,
		Username: in.Username,
		Email:    in.Email,
	}
	if in.Password != nil {
		hash, err := controller.hasher.HashPassword(*in.Password)
		if err != nil {
			respondUserWriteError(c, err, "hash password")
			return
		}
		changes.PasswordHash = &hash
	}

	user, err := controller.store.Update(c.Request.Context(), id, changes)
	if err != nil {
		respondUserWriteError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}
