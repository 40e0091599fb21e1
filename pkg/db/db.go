package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/hirebridge/recruit-backend/config"
)

// GetConnection opens a pooled gorm connection using the database section of
// the application config.
func GetConnection(databaseConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		databaseConfig.Host,
		databaseConfig.Username,
		databaseConfig.Password,
		databaseConfig.Name,
		databaseConfig.Port,
		databaseConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		// QueryFields mode will select by all fields' name for current model
		QueryFields: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		log.Fatalf("connecting to database: %s", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("accessing sql.DB: %s", err)
	}
	sqlDB.SetMaxIdleConns(databaseConfig.Pool.IdleConnections)
	sqlDB.SetMaxOpenConns(databaseConfig.Pool.MaxConnections)
	if databaseConfig.Pool.ConnLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(databaseConfig.Pool.ConnLifeTime)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db
}

// Close closes the underlying sql.DB of a gorm connection.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
