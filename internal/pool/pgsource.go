package pool

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// poolRecord is one published pool document. The scraper pipeline inserts a
// row per pool version; the newest row wins.
type poolRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"size:64;index"`
	Payload   []byte `gorm:"type:jsonb"`
	Overrides []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (poolRecord) TableName() string { return "hero_role_pools" }

// PostgresSource loads the latest published pool document from Postgres.
// The payload goes through the same Parse/validate pipeline as the file
// source, so both enforce identical invariants.
func PostgresSource(dsn string) (Source, error) {
	db, err := gorm.Open(postgres.Open(strings.TrimSpace(dsn)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open pool database: %w", err)
	}
	return func() (*Snapshot, error) {
		var rec poolRecord
		if err := db.Order("created_at DESC").First(&rec).Error; err != nil {
			return nil, fmt.Errorf("load pool record: %w", err)
		}
		return Parse(rec.Payload, rec.Overrides)
	}, nil
}

// SourceFromEnv picks Postgres when POOL_PG_DSN is set, the pool file
// otherwise.
func SourceFromEnv() (Source, error) {
	if dsn := strings.TrimSpace(os.Getenv("POOL_PG_DSN")); dsn != "" {
		return PostgresSource(dsn)
	}
	path := strings.TrimSpace(os.Getenv("POOL_PATH"))
	if path == "" {
		path = "hero_role_pool.json"
	}
	return FileSource(path, strings.TrimSpace(os.Getenv("POOL_OVERRIDES_PATH"))), nil
}
