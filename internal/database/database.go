package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/librarium/bookshelf/internal/auth"
	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/entities"
)

const (
	seedUsername  = "test"
	seedEmail     = "test@test"
	seedPassword  = "test"
	seedBookTitle = "Test Book"
)

type Database struct {
	DB *gorm.DB
}

func dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultDatabasePath
		}
		if !strings.Contains(path, "?") {
			path += "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
		}
		return sqlite.Open(path), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("DATABASE_DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewDatabase opens the catalogue store, applies the schema and configures the
// connection pool. Seeding is left to the caller.
func NewDatabase(cfg config.Database) (*Database, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.ReadBook{},
		&entities.CommentRating{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	target := cfg.Path
	if cfg.Driver == config.DriverPostgres {
		target = "postgres"
	}
	log.Printf("Database initialized successfully at %s", target)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Seed inserts the test user and the sample book when they are missing.
// Running it repeatedly is harmless.
func (d *Database) Seed(ctx context.Context, bcryptCost int) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.User{}).Where("email = ?", seedEmail).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check seed user: %w", err)
		}
		if count == 0 {
			hash, err := auth.HashPassword(seedPassword, bcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash seed password: %w", err)
			}
			user := &entities.User{
				Name:         "Test",
				Surname:      "Test",
				Username:     seedUsername,
				Email:        seedEmail,
				PasswordHash: hash,
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("failed to create seed user: %w", err)
			}
			log.Printf("Created seed user: %s", seedUsername)
		}

		if err := tx.Model(&entities.Book{}).Where("title = ?", seedBookTitle).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check seed book: %w", err)
		}
		if count == 0 {
			book := &entities.Book{
				Title:           seedBookTitle,
				Authors:         seedBookTitle,
				Synopsis:        seedBookTitle,
				BuyLink:         seedBookTitle,
				Genres:          seedBookTitle,
				Editorial:       seedBookTitle,
				Comments:        seedBookTitle,
				PublicationDate: time.Now().UTC(),
				Image:           "test",
			}
			if err := tx.Create(book).Error; err != nil {
				return fmt.Errorf("failed to create seed book: %w", err)
			}
			log.Printf("Created seed book: %s", seedBookTitle)
		}
		return nil
	})
}
