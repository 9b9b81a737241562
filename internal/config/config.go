package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"   // Single-file database (default)
	DriverPostgres DatabaseDriver = "postgres" // PostgreSQL via DATABASE_DSN
)

type (
	Config struct {
		HTTP
		API
		Global
		Database
		Users
		Auth
		RateLimit
		CORS
		Tasks
		Email
		Ratings
	}

	HTTP struct {
		Port int32
		Host string
	}
	API struct {
		Prefix      string // Versioned route prefix, e.g. "/api/v1"
		ProjectName string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		SeedOnStart              bool
	}
	Database struct {
		Driver          DatabaseDriver
		Path            string // SQLite file path
		DSN             string // PostgreSQL connection string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		LogLevel        string // silent, error, warn, info
	}
	Users struct {
		OpenRegistration bool
	}
	Auth struct {
		BcryptCost int

		// Login rate limiting
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	RateLimit struct {
		Enabled bool
		RPS     float64 // Sustained requests per second per client IP
		Burst   int
	}
	CORS struct {
		AllowedOrigins []string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Email struct {
		Enabled bool
		From    string
	}
	Ratings struct {
		ReconcileEnabled  bool
		ReconcileSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("seed_on_start", true)
	v.SetDefault("api_v1_str", DefaultAPIPrefix)
	v.SetDefault("project_name", "Bookshelf")

	// Database defaults
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 25)
	v.SetDefault("database_max_idle_conns", 10)
	v.SetDefault("database_conn_max_lifetime", "5m")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("users_open_registration", false)

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// API rate limit defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	v.SetDefault("cors_allowed_origins", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Email is inert unless explicitly enabled
	v.SetDefault("email_enabled", false)
	v.SetDefault("email_from", "no-reply@bookshelf.local")

	v.SetDefault("rating_reconcile_enabled", true)
	v.SetDefault("rating_reconcile_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		API: API{
			Prefix:      v.GetString("API_V1_STR"),
			ProjectName: v.GetString("PROJECT_NAME"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			SeedOnStart:              v.GetBool("SEED_ON_START"),
		},
		Database: Database{
			Driver:          DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:            v.GetString("DATABASE_PATH"),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			LogLevel:        v.GetString("DATABASE_LOG_LEVEL"),
		},
		Users: Users{
			OpenRegistration: v.GetBool("USERS_OPEN_REGISTRATION"),
		},
		Auth: Auth{
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		RateLimit: RateLimit{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Email: Email{
			Enabled: v.GetBool("EMAIL_ENABLED"),
			From:    v.GetString("EMAIL_FROM"),
		},
		Ratings: Ratings{
			ReconcileEnabled:  v.GetBool("RATING_RECONCILE_ENABLED"),
			ReconcileSchedule: v.GetString("RATING_RECONCILE_SCHEDULE"),
		},
	}
}
