package database

import "time"

// Config provides connection settings for the local database file.
type Config struct {
	// Path is the database file path (e.g., "storage/guruai.db").
	// Use ":memory:" for an ephemeral database in tests.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// The offline store is a single logical writer, so default is 1.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections. Default: 1.
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime. Default: 10 minutes.
	ConnMaxLifetime time.Duration

	// BusyTimeout in milliseconds before a locked database access fails.
	// Default: 5000.
	BusyTimeout int

	// EnableWAL enables Write-Ahead Logging. Default: true.
	EnableWAL bool

	// TxImmediate acquires the write lock at transaction start instead of on
	// first write. This prevents lock upgrade deadlocks when a read
	// transaction later turns into a write. Default: true.
	TxImmediate bool
}

// DefaultConfig returns configuration with sensible defaults for a
// device-local store.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 10 * time.Minute,
		BusyTimeout:     5000,
		EnableWAL:       true,
		TxImmediate:     true,
	}
}
