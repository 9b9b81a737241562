package config

const (
	// DefaultDatabasePath is the default path for the SQLite catalogue database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultAPIPrefix is the versioned prefix every API route is mounted under
	DefaultAPIPrefix = "/api/v1"
)
