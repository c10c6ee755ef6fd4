package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
)

// Connect opens the spatial backend selected by configuration and returns
// the handle together with the SQL dialect strategy for it.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, Dialect, error) {
	// Verbose logger to surface slow spatial queries in operator logs.
	lg := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	var (
		db      *gorm.DB
		dialect Dialect
		err     error
	)
	switch cfg.Type {
	case config.SpatiaLite:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{Logger: lg})
		dialect = SpatiaLiteDialect{}
	default:
		if cfg.URL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is empty")
		}
		db, err = gorm.Open(postgres.Open(cfg.URL), &gorm.Config{Logger: lg})
		dialect = PostgresDialect{}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, dialect, nil
}
