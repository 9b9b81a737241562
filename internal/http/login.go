package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/entities"
)

const msgIncorrectPassword = "Incorrect password."

// Authenticator checks an email and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*entities.User, error)
}

type LoginController struct {
	authenticator Authenticator
	limiter       *auth.LoginLimiter
}

func NewLoginController(authenticator Authenticator, limiter *auth.LoginLimiter) *LoginController {
	return &LoginController{
		authenticator: authenticator,
		limiter:       limiter,
	}
}

// POST /api/v1/login?email=&pswd_input=
func (controller *LoginController) Login(c *gin.Context) {
	q := &queryReader{c: c}
	email := q.String("email")
	password := q.String("pswd_input")
	if !q.ok() {
		return
	}

	user, err := controller.authenticator.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailRequired), errors.Is(err, auth.ErrPasswordRequired):
			respondValidation(c, msgFieldRequired, nil)
		case errors.Is(err, auth.ErrUserNotFound):
			controller.recordFailure(c, email)
			respondNotFound(c, msgUserNotFoundByEmail)
		case errors.Is(err, auth.ErrInvalidPassword):
			controller.recordFailure(c, email)
			respondBadRequest(c, msgIncorrectPassword)
		default:
			respondInternalError(c, err, "login")
		}
		return
	}

	if controller.limiter != nil {
		controller.limiter.RecordSuccess(c.ClientIP(), email)
	}
	c.JSON(http.StatusOK, user)
}

func (controller *LoginController) recordFailure(c *gin.Context, email string) {
	if controller.limiter == nil {
		return
	}
	if locked, retryAfter := controller.limiter.RecordFailure(c.ClientIP(), email); locked {
		c.Header("Retry-After", auth.RetryAfterSeconds(retryAfter))
	}
}
