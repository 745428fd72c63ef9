package cart

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type slotRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (slotRecord) TableName() string { return "cart_slots" }

// OpenSQLite opens (creating if needed) a single-file database through gorm.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
}

// SQLiteSlots keeps carts in an embedded database file. It has no change
// feed: other processes sharing the file are not observed.
type SQLiteSlots struct {
	db *gorm.DB
}

func NewSQLiteSlots(db *gorm.DB) (*SQLiteSlots, error) {
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteSlots{db: db}, nil
}

func (s *SQLiteSlots) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteSlots) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var rec slotRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(rec.Value), true, nil
}

func (s *SQLiteSlots) Save(ctx context.Context, key string, value []byte) error {
	rec := slotRecord{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *SQLiteSlots) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
