// Package database opens the relational store and prepares its schema.
package database

import (
	"context"
	"errors"
	"fmt"

	"katalog/internal/config"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store selected by driver. Driver errors are
// translated so unique violations surface as gorm.ErrDuplicatedKey.
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Seed inserts one user per role, all sharing password, and a few products
// when the catalog is empty. Existing users are left untouched.
func Seed(ctx context.Context, users repositories.UserRepository, products repositories.ProductRepository, password string, log *zap.Logger) error {
	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}

	for _, role := range []string{models.RoleAdmin, models.RoleEditor, models.RoleViewer} {
		_, err := users.GetByUsername(ctx, role)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if err := users.Create(ctx, &models.User{Username: role, PasswordHash: hash, Role: role}); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", role, err)
		}
		log.Info("seeded user", zap.String("username", role))
	}

	total, err := products.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	for _, p := range demoProducts() {
		p := p
		if err := products.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
		log.Info("seeded product", zap.String("sku", p.SKU), zap.String("id", p.ID))
	}
	return nil
}

func demoProducts() []models.Product {
	return []models.Product{
		{Name: "Laptop", SKU: "LAP-001", Price: decimal.RequireFromString("1200.00"), Stock: 10, Category: "electronics"},
		{Name: "Keyboard", SKU: "KEY-001", Price: decimal.RequireFromString("75.00"), Stock: 25, Category: "accessories"},
		{Name: "Mouse", SKU: "MOU-001", Price: decimal.RequireFromString("25.00"), Stock: 50, Category: "accessories"},
	}
}
