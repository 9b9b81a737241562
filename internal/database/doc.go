// Package database provides the data access layer for the catalogue.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, dialect selection, migrations, seeding
//	├── sqlbuild/        # goqu statements whose shape depends on input
//	├── books/           # Book CRUD, keyword search, genre filter
//	├── users/           # User CRUD, partial update
//	├── readbooks/       # Read-book history
//	└── comments/        # Comment/rating rows and the rating recompute
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type bound to a *gorm.DB:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	book, err := booksRepo.GetByID(ctx, 42)
//
// Every repository method takes a context and runs against
// db.WithContext(ctx). Mutations that touch more than one table run inside
// db.Transaction, which commits when the closure returns nil and rolls back
// on error or panic.
//
// # Dialects
//
// DATABASE_DRIVER selects sqlite (default, DATABASE_PATH) or postgres
// (DATABASE_DSN). Raw SQL in the repositories is written so that it runs
// unchanged on both.
package database
