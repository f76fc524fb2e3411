package config

import (
	"fmt"
	"time"

	"blogapp/global"
	"blogapp/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func initDB() {
	db, err := OpenDB(AppConfig.Database.Driver, AppConfig.Database.Dsn, AppConfig.IsProd())
	if err != nil {
		global.Logger.Fatalf("Failed to initialize database, got error: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		global.Logger.Fatalf("Failed to configure database, got error: %v", err)
	}
	sqlDB.SetMaxIdleConns(AppConfig.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := AutoMigrate(db); err != nil {
		global.Logger.Fatalf("Failed to migrate database, got error: %v", err)
	}

	global.Db = db
	global.Logger.WithField("driver", AppConfig.Database.Driver).Info("database initialized")
}

// OpenDB opens a gorm connection for one of the supported drivers:
// mysql (default), postgres or sqlite.
func OpenDB(driver, dsn string, isProd bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	level := logger.Info
	if isProd {
		level = logger.Warn
	}
	gormLogger := logger.New(global.Logger, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// AutoMigrate creates or updates every table the app owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.ArticleLike{},
		&models.AuthorLike{},
		&models.Follow{},
	)
}
