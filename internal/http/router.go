package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if len(cfg.CORS.AllowedOrigins) > 0 {
		router.Use(auth.CORSMiddleware(cfg.CORS.AllowedOrigins))
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS > 0 {
		limiter := NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		router.Use(limiter.Middleware())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = config.DefaultAPIPrefix
	}
	api := router.Group(prefix)

	books := NewBooksController(cfg.BookStore)
	comments := NewCommentsController(cfg.CommentStore)
	users := NewUsersController(cfg.UserStore, cfg.PasswordHasher, cfg.Notifier, cfg.OpenRegistration)
	readBooks := NewReadBooksController(cfg.ReadBookStore)
	login := NewLoginController(cfg.Authenticator, cfg.LoginLimiter)

	booksGroup := api.Group("/books")
	{
		booksGroup.GET("", books.List)
		booksGroup.POST("", books.Create)
		booksGroup.POST("/filter-by-genres", books.FilterByGenres)
		booksGroup.GET("/book/:id", books.Get)
		booksGroup.GET("/:keyword", books.Search)
		booksGroup.PUT("/:keyword", books.Update)
		booksGroup.DELETE("/:keyword", books.Delete)

		booksGroup.POST("/books/:id/comments", comments.Create)
		booksGroup.GET("/CommentRatingPerBook/:id", comments.ListForBook)
		booksGroup.DELETE("/CommentRatingPerBook/:id", comments.Delete)
	}

	usersGroup := api.Group("/users")
	{
		usersGroup.GET("", users.List)
		usersGroup.POST("", users.Create)
		usersGroup.POST("/open", users.CreateOpen)
		usersGroup.GET("/by-id/:id", users.GetByID)
		usersGroup.GET("/by-email", users.GetByEmail)
		usersGroup.GET("/by-email/:email", users.GetByEmail)
		usersGroup.GET("/:keyword", users.Search)
		usersGroup.PUT("/:keyword", users.Update)
	}

	readBooksGroup := api.Group("/readbooks")
	{
		readBooksGroup.POST("", readBooks.Create)
		readBooksGroup.GET("/:user_id/:book_id", readBooks.Get)
		readBooksGroup.DELETE("/:user_id/:book_id", readBooks.Delete)
	}

	loginHandlers := []gin.HandlerFunc{}
	if cfg.LoginLimiter != nil {
		loginHandlers = append(loginHandlers, cfg.LoginLimiter.Middleware())
	}
	loginHandlers = append(loginHandlers, login.Login)
	api.POST("/login", loginHandlers...)

	return router
}
