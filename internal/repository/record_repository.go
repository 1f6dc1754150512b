package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"life-goals/internal/model"
)

// RecordRepository stores small JSON documents per user under fixed keys.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Get returns the stored value, or nil when no record exists.
func (r *RecordRepository) Get(ctx context.Context, userID uint, key string) ([]byte, error) {
	var rec model.StoredRecord
	err := r.db.WithContext(ctx).Where("user_id = ? AND record_key = ?", userID, key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", key, err)
	}
	return []byte(rec.Value), nil
}

// Put replaces the value stored under key.
func (r *RecordRepository) Put(ctx context.Context, userID uint, key string, value []byte) error {
	rec := model.StoredRecord{UserID: userID, Key: key, Value: string(value)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

// Bind scopes the repository to one user and key.
func (r *RecordRepository) Bind(userID uint, key string) *BoundRecord {
	return &BoundRecord{repo: r, userID: userID, key: key}
}

// BoundRecord is a single user's record under a single key.
type BoundRecord struct {
	repo   *RecordRepository
	userID uint
	key    string
}

func (b *BoundRecord) Load(ctx context.Context) ([]byte, error) {
	return b.repo.Get(ctx, b.userID, b.key)
}

func (b *BoundRecord) Save(ctx context.Context, raw []byte) error {
	return b.repo.Put(ctx, b.userID, b.key, raw)
}
