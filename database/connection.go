package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/logger"
)

const socketDir = "/cloudsql"

// DSN builds the PostgreSQL connection string. With an instance connection
// name it targets the Cloud SQL unix socket, otherwise host and port.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=%s/%s user=%s password=%s dbname=%s sslmode=disable",
			socketDir, cfg.InstanceConnectionName, cfg.User, cfg.Pass, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Pass, cfg.Name, cfg.Port)
}

// Connect opens the gorm connection.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.InstanceConnectionName != "" {
		logger.Store.Info("connecting to Cloud SQL via socket", slog.String("instance", cfg.InstanceConnectionName))
	} else {
		logger.Store.Info("connecting to PostgreSQL", slog.String("host", cfg.Host), slog.Int("port", cfg.Port))
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Store.Info("database connected", slog.String("event", "store.connected"), slog.String("db", cfg.Name))
	return db, nil
}
