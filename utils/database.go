package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/socialcause/cause-api/models"
)

// InitDatabase opens the MySQL connection and tunes the pool. The handle is
// returned to the caller for injection; there is no package-level DB.
func InitDatabase(host, user, password, dbname string, port int) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	// 生产环境只记录错误
	logLevel := logger.Info
	if os.Getenv("GO_ENV") == "production" {
		logLevel = logger.Error
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel: logLevel,
		},
	)

	log.Printf("Attempting to connect to database: %s:%d/%s", host, port, dbname)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(15)
	sqlDB.SetMaxOpenConns(120)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	log.Printf("Database connection successful!")
	return db, nil
}

// MigrateDatabase 执行数据库迁移 — creates the causes and contributions tables.
func MigrateDatabase(db *gorm.DB) error {
	log.Println("Starting database migration...")
	if err := db.AutoMigrate(
		&models.Cause{},
		&models.Contribution{},
	); err != nil {
		return err
	}
	log.Println("Database migration completed successfully!")
	return nil
}
