package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

func newLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             300 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  level,                  // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)
}

func NewPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	return db, err
}

// NewSQLite opens a sqlite database. An in-memory dsn is pinned to a single
// connection so every query sees the same database.
func NewSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Open picks the dialect by driver name ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return NewPostgres(dsn)
	}
}

// Migrate creates or updates the relations and their lookup indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Person{},
		&models.User{},
		&models.Aspect{},
		&models.Contact{},
		&models.AspectMembership{},
		&models.Post{},
		&models.PostVisibility{},
	)
}
