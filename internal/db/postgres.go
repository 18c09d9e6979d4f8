package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gopher0727/Concord/internal/model"
)

// InitPostgres opens the connection, runs migrations, and installs the
// uniqueness guards the membership invariants rely on.
func InitPostgres(dsn string, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := gdb.AutoMigrate(
		&model.Profile{},
		&model.Server{},
		&model.Channel{},
		&model.Member{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate models: %w", err)
	}

	// At most one "general" channel per server. The partial unique index
	// backs up the engine's serialized check-then-insert at the storage
	// level.
	if err := gdb.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_channels_one_general ON channels (server_id) WHERE name = 'general'`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create general channel index: %w", err)
	}

	return gdb, nil
}

// BuildDSN builds a PostgreSQL DSN.
func BuildDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
}
