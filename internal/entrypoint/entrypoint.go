package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/database"
	"github.com/librarium/bookshelf/internal/database/books"
	"github.com/librarium/bookshelf/internal/database/comments"
	"github.com/librarium/bookshelf/internal/database/readbooks"
	"github.com/librarium/bookshelf/internal/database/users"
	http_controllers "github.com/librarium/bookshelf/internal/http"
	"github.com/librarium/bookshelf/internal/notify"
	"github.com/librarium/bookshelf/internal/rating"
	"github.com/librarium/bookshelf/internal/scheduler"
	"github.com/librarium/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is the fully wired server: router plus the background pieces that
// must be stopped on shutdown.
type App struct {
	Router    *gin.Engine
	DB        *database.Database
	Tasks     *tasks.Client // nil when TASKS_ENABLED=false
	Scheduler *scheduler.RatingReconcileScheduler

	limiter    *auth.LoginLimiter
	taskCancel context.CancelFunc
}

// NewApp opens the database, seeds it if configured, starts the task queue
// and the reconcile scheduler, and builds the router.
func NewApp(cfg *config.Config, version string) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{DB: db}

	if cfg.Global.SeedOnStart {
		if err := db.Seed(context.Background(), cfg.Auth.BcryptCost); err != nil {
			app.Close(context.Background())
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	reconciler := rating.NewReconciler(db.DB)

	// Initialize task queue if enabled
	var notifier http_controllers.UserNotifier
	var requester scheduler.RecomputeRequester = scheduler.Direct{Reconciler: reconciler}
	if cfg.Tasks.Enabled {
		taskCfg := tasks.ConfigFrom(cfg)
		taskClient, err := tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			app.Close(context.Background())
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.Tasks = taskClient

		// Register task queues
		taskClient.Register(
			tasks.NewSendWelcomeEmailQueue(notify.NewLogSender(cfg.Email.From), taskCfg.ProjectName),
			tasks.NewRecomputeRatingsQueue(reconciler),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, app.taskCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		notifier = taskClient
		requester = taskClient
	} else {
		log.Printf("Task queue disabled: welcome emails are skipped and rating reconciliation runs inline")
	}

	if cfg.Ratings.ReconcileEnabled {
		app.Scheduler = scheduler.NewRatingReconcileScheduler(requester, cfg.Ratings.ReconcileSchedule)
		if err := app.Scheduler.Start(context.Background()); err != nil {
			app.Close(context.Background())
			return nil, fmt.Errorf("failed to start rating reconcile scheduler: %w", err)
		}
	}

	authService := auth.NewService(db.DB, cfg.Auth)
	app.limiter = auth.NewLoginLimiter(auth.LoginLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	if cfg.Users.OpenRegistration {
		log.Printf("Open user registration is enabled")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:         db,
		Version:          version,
		BookStore:        books.NewRepository(db.DB),
		CommentStore:     comments.NewRepository(db.DB),
		UserStore:        users.NewRepository(db.DB),
		ReadBookStore:    readbooks.NewRepository(db.DB),
		Authenticator:    authService,
		PasswordHasher:   authService,
		LoginLimiter:     app.limiter,
		Notifier:         notifier,
		APIPrefix:        cfg.API.Prefix,
		OpenRegistration: cfg.Users.OpenRegistration,
		CORS:             cfg.CORS,
		RateLimit:        cfg.RateLimit,
	}
	app.Router = http_controllers.NewRouter(routerCfg)

	return app, nil
}

// Close stops background work and releases the databases. It is safe on a
// partially built App.
func (a *App) Close(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Tasks != nil {
		a.Tasks.Stop(ctx)
		if a.taskCancel != nil {
			a.taskCancel()
		}
		if err := a.Tasks.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work once no more requests can enqueue it
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting %s v%s", cfg.API.ProjectName, version)

	app, err := NewApp(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	Serve(app.Router, cfg, app.Close)
}
