package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool sizing shared by the API server and the matching scheduler,
// which run in one process against one database.
const (
	poolMaxOpen     = 30
	poolMaxIdle     = 10
	poolMaxLifetime = 30 * time.Minute
	poolMaxIdleTime = 10 * time.Minute
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormWithDialector is the seam tests use to swap in a mocked
// connection. NowFunc keeps gorm-managed timestamps in UTC like every
// other timestamp in the system.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	// Pinging is deferred until after the pool is sized, so gorm's
	// automatic ping on Open is off.
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Info),
		NowFunc:              func() time.Time { return time.Now().UTC() },
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(poolMaxOpen)
	sqlDB.SetMaxIdleConns(poolMaxIdle)
	sqlDB.SetConnMaxLifetime(poolMaxLifetime)
	sqlDB.SetConnMaxIdleTime(poolMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	logrus.Info("gorm: connected")
	return db, nil
}
