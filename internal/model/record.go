package model

import "time"

// StoredRecord keeps one JSON document per user and key.
type StoredRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_user_record_key"`
	Key       string `gorm:"column:record_key;uniqueIndex:idx_user_record_key"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
