package http

import (
	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/database"
)

// RouterConfig holds all dependencies needed to create the HTTP router.
// Stores are interfaces so handler tests can swap in fakes.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Version  string

	// Stores
	BookStore     BookStore
	CommentStore  CommentStore
	UserStore     UserStore
	ReadBookStore ReadBookStore

	// Auth
	Authenticator  Authenticator
	PasswordHasher PasswordHasher
	LoginLimiter   *auth.LoginLimiter // nil disables login throttling

	// Notifier is told about newly created users; nil means nobody listens.
	Notifier UserNotifier

	// Settings
	APIPrefix        string
	OpenRegistration bool
	CORS             config.CORS
	RateLimit        config.RateLimit
}
