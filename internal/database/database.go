package database

import (
	"strings"

	"playerhire/internal/domain"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// DSNs and falls back to the pure-Go
// SQLite driver for anything else (file paths, file: URIs, :memory:).
func Connect(dsn string, log *zap.SugaredLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if log != nil {
			log.Info("connecting to PostgreSQL")
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	if log != nil {
		log.Infow("using SQLite for local development", "dsn", dsn)
	}

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.PlayerListing{})
}
