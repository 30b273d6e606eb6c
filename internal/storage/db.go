package storage

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"soundbed/internal/types"
	"soundbed/log"
)

var DB *gorm.DB

const dbFileName = "soundbed.db"

// DBDir is where the sqlite file lives; overridable for tests.
var DBDir = "data"

func InitDB() {
	dbPath := filepath.Join(DBDir, dbFileName)

	if err := os.MkdirAll(DBDir, 0o755); err != nil {
		log.GetLogger().Fatal("failed to create database directory", zap.String("dir", DBDir), zap.Error(err))
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.GetLogger().Fatal("failed to connect database", zap.Error(err))
	}

	if err = DB.AutoMigrate(&types.BgmTask{}); err != nil {
		log.GetLogger().Fatal("failed to migrate database", zap.Error(err))
	}

	log.GetLogger().Info("Database initialized successfully", zap.String("path", dbPath))
}
