package database

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Manager owns the connection to the local database file. It opens lazily on
// first use and hands out GORM sessions to the store.
type Manager struct {
	driver  Driver
	cfg     *Config
	logger  *slog.Logger
	db      *gorm.DB
	dbOnce  sync.Once
	dbMutex sync.Mutex
}

// NewManager creates a database manager with the given driver and config.
func NewManager(driver Driver, cfg *Config, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		driver: driver,
		cfg:    cfg,
		logger: logger,
	}
}

// Connect returns a GORM database instance, initializing on first call.
func (m *Manager) Connect() (*gorm.DB, error) {
	var err error
	m.dbOnce.Do(func() {
		err = m.open()
	})
	if err != nil {
		return nil, err
	}
	return m.db.Session(&gorm.Session{}), nil
}

// Close checkpoints and closes the database connection. The manager can be
// reused; the next Connect reopens the file.
func (m *Manager) Close() error {
	m.dbMutex.Lock()
	defer m.dbMutex.Unlock()

	if m.db == nil {
		return nil
	}

	if err := m.driver.Close(m.db, m.logger); err != nil {
		m.logger.Warn("driver cleanup error", slog.Any("error", err))
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("database: access sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("database: close: %w", err)
	}

	m.db = nil
	m.dbOnce = sync.Once{}
	m.logger.Info("database connection closed", slog.String("driver", m.driver.Name()))
	return nil
}

// Driver returns the underlying driver.
func (m *Manager) Driver() Driver {
	return m.driver
}

func (m *Manager) open() error {
	m.dbMutex.Lock()
	defer m.dbMutex.Unlock()

	if m.db != nil {
		return nil
	}

	dsn := m.driver.ConfigureDSN(m.cfg.Path, m.cfg)

	gormLogger := NewGormLogger(m.logger.With(slog.String("component", "gorm")))

	db, err := gorm.Open(m.driver.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("database: open: %w", err)
	}

	if err := m.driver.AfterConnect(db, m.cfg, m.logger); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: access sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(m.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.cfg.ConnMaxLifetime)

	m.logger.Info("database connection established",
		slog.String("driver", m.driver.Name()),
		slog.String("path", m.cfg.Path),
	)

	m.db = db
	return nil
}
