package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ablewear/ablewear/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	gormCfg := &gorm.Config{
		// sentinel duplicate-key errors are load-bearing for the
		// checkout saga and cart upsert
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case "sqlite", "sqlite3":
		dsn := filepath.Join(workdir, "data", "ablewear.db")
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	}
	if err != nil {
		zap.S().Panicf("database connect failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Panicf("database handle failed: %v", err)
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db
}
