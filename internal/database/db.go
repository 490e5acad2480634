package database

import (
	"campusbuddy/internal/config"
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Open returns the Store selected by cfg.Driver. For postgres it connects,
// pings and ensures the schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	case "postgres":
		db, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := CreateTables(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenPostgres initializes the database connection pool.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	logger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("user", cfg.User),
		zap.String("db", cfg.Name),
		zap.String("sslmode", cfg.SSLMode),
	)

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, 25))
	db.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, 25))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return db, nil
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
