package tasks

import (
	"time"

	"github.com/librarium/bookshelf/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// ProjectName is used in notification subjects.
	ProjectName string

	// EmailEnabled gates the welcome email on user creation.
	EmailEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: 1 * time.Hour,
		ProjectName:     "Bookshelf",
	}
}

// ConfigFrom derives the queue settings from the application config,
// falling back to defaults for unset values.
func ConfigFrom(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg.Tasks.Workers > 0 {
		out.Workers = cfg.Tasks.Workers
	}
	if cfg.Tasks.ReleaseAfter > 0 {
		out.ReleaseAfter = cfg.Tasks.ReleaseAfter
	}
	if cfg.Tasks.CleanupInterval > 0 {
		out.CleanupInterval = cfg.Tasks.CleanupInterval
	}
	if cfg.API.ProjectName != "" {
		out.ProjectName = cfg.API.ProjectName
	}
	out.EmailEnabled = cfg.Email.Enabled
	return out
}
