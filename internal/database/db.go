package database

import (
	"fmt"

	"goldsure-backend/internal/config"
	"goldsure-backend/internal/logger"
	"goldsure-backend/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the configured store and migrates the schema.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.NewGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// sqlite allows a single writer; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("driver", cfg.DatabaseDriver))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.StockItem{},
		&models.UsageEvent{},
		&models.BillingRecord{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return backfillNormalizedNames(db)
}

// backfillNormalizedNames fills the restock match key for rows written before
// the column existed.
func backfillNormalizedNames(db *gorm.DB) error {
	var items []models.StockItem
	if err := db.Where("normalized_name = ?", "").Find(&items).Error; err != nil {
		return fmt.Errorf("stock backfill lookup failed: %w", err)
	}
	for _, it := range items {
		key := models.NormalizeStockName(it.Name)
		if key == "" {
			continue
		}
		if err := db.Model(&models.StockItem{}).Where("id = ?", it.ID).Update("normalized_name", key).Error; err != nil {
			return fmt.Errorf("stock backfill failed for item %d: %w", it.ID, err)
		}
	}
	return nil
}

// SeedAccounts creates the owner and staff accounts when their emails are not present.
func SeedAccounts(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	seeds := []struct {
		acc  config.SeedAccount
		role models.UserRole
	}{
		{cfg.Owner, models.RoleOwner},
		{cfg.Staff, models.RoleStaff},
	}

	for _, s := range seeds {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", s.acc.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("seed lookup %s: %w", s.acc.Email, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(s.acc.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("could not hash seed password: %w", err)
		}
		user := models.User{
			Name:         s.acc.Name,
			Email:        s.acc.Email,
			PasswordHash: string(hash),
			Role:         s.role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed create %s: %w", s.acc.Email, err)
		}
		log.Info("seeded account", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	}
	return nil
}
