package database

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

const pingTimeout = 5 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker pings the database behind a gorm handle.
type HealthChecker struct {
	db *sql.DB
}

func NewHealthChecker(db *gorm.DB) (*HealthChecker, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &HealthChecker{db: sqlDB}, nil
}

// NewHealthCheckerFromSQL wraps an existing *sql.DB.
func NewHealthCheckerFromSQL(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) PingContext(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}
