package db

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eprescription-dashboard/config"
	"eprescription-dashboard/internal/model"
)

// lifetimeUnit scales StorageConfig.ConnMaxLifetimeMinutes.
var lifetimeUnit = time.Minute

// Init opens the configured database and runs migrations.
func Init(cfg *config.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
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

	// An in-memory SQLite database disappears with its last connection, so
	// its connections are never recycled.
	if cfg.Driver == "sqlite" && IsMemoryDSN(cfg.DSN) {
		if cfg.ConnMaxLifetimeMinutes > 0 {
			log.Printf("Ignoring conn_max_lifetime_minutes for in-memory SQLite database %q", cfg.DSN)
		}
		if cfg.MaxIdleConns <= 0 {
			sqlDB.SetMaxIdleConns(1)
		}
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * lifetimeUnit)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// IsMemoryDSN reports whether a SQLite DSN names an in-memory database.
func IsMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Migrate creates the snapshot tables.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Doctor{},
		&model.Session{},
		&model.Order{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// Seed replaces the contents of the snapshot tables with snap in a single
// transaction. It is called once at startup; nothing writes afterwards.
func Seed(ctx context.Context, db *gorm.DB, snap *model.Snapshot, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	log.Printf("Seeding snapshot %s (%d sessions, %d orders)...", snap.ID, len(snap.Sessions), len(snap.Orders))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{&model.Order{}, &model.Session{}, &model.Doctor{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", table, err)
			}
		}

		if len(snap.Doctors) > 0 {
			doctors := slices.Clone(snap.Doctors)
			if err := tx.CreateInBatches(&doctors, batchSize).Error; err != nil {
				return fmt.Errorf("failed to seed doctors: %w", err)
			}
		}
		if len(snap.Sessions) > 0 {
			sessions := slices.Clone(snap.Sessions)
			if err := tx.CreateInBatches(&sessions, batchSize).Error; err != nil {
				return fmt.Errorf("failed to seed sessions: %w", err)
			}
		}
		if len(snap.Orders) > 0 {
			orders := slices.Clone(snap.Orders)
			if err := tx.CreateInBatches(&orders, batchSize).Error; err != nil {
				return fmt.Errorf("failed to seed orders: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Database seeding complete.")
	return nil
}
