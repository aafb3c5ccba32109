package storage

import (
	"fmt"
	"time"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the database described by cfg.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewCustomGormLogger(cfg.Logger.Level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	if cfg.Database.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Infof("Database connection established (%s)", cfg.Database.Driver)
	return db, nil
}

func dialectorFor(dbc config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbc.Driver {
	case "", "sqlite":
		if dbc.Path == "" {
			return nil, fmt.Errorf("database path is required for sqlite")
		}
		logger.Infof("Opening sqlite database: %s", dbc.Path)
		return sqlite.Open(dbc.Path), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			dbc.Username,
			dbc.Password,
			dbc.Host,
			dbc.Port,
			dbc.DBName,
			dbc.Charset,
		)
		logger.Infof("Connecting to database: %s:%d/%s", dbc.Host, dbc.Port, dbc.DBName)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbc.Driver)
	}
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
