package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-management-backend/config"
	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

// Init opens the configured database and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("running database migrations", zap.String("driver", cfg.Driver))
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database initialization complete")
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Address{},
		&model.Floor{},
		&model.Resident{},
		&model.Permission{},
		&model.User{},
		&model.Charge{},
		&model.FinancialRecord{},
		&model.Complaint{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// DefaultPermissions are created on first start and granted to the admin.
func DefaultPermissions() []model.Permission {
	all := func(name, module string) model.Permission {
		return model.Permission{Name: name, Module: module, CanView: true, CanAdd: true, CanEdit: true, CanDelete: true}
	}
	return []model.Permission{
		{Name: "view_dashboard", Module: model.ModuleDashboard, CanView: true},
		all("manage_addresses", model.ModuleAddresses),
		all("manage_residents", model.ModuleResidents),
		all("manage_financial", model.ModuleFinancial),
		all("manage_complaints", model.ModuleComplaints),
		all("manage_users", model.ModuleUsers),
	}
}

// Seed creates the admin account and default permissions when no admin
// exists yet. It reports whether anything was created.
func Seed(ctx context.Context, s store.Store, adminHash []byte, log *zap.Logger) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	users := s.Users()

	_, err := users.GetByUsername(ctx, "admin")
	if err == nil {
		log.Debug("database already initialized")
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	names := make([]string, 0, 6)
	for _, p := range DefaultPermissions() {
		if _, err := users.GetPermission(ctx, p.Name); err == nil {
			names = append(names, p.Name)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return false, err
		}
		if _, err := users.CreatePermission(ctx, p); err != nil {
			return false, fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
		names = append(names, p.Name)
	}

	admin, err := users.Create(ctx, store.UserInput{
		Username: "admin",
		FullName: "System Administrator",
		Email:    "admin@example.com",
		IsActive: true,
	}, adminHash)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	if _, err := users.SetPermissions(ctx, admin.ID, names); err != nil {
		return false, fmt.Errorf("grant admin permissions: %w", err)
	}

	log.Info("admin user created", zap.String("username", admin.Username), zap.Int("permissions", len(names)))
	return true, nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
