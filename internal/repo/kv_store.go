// Package repo implements the data persistence layer, backed by GORM. This
// file provides KVStore, the durable key→value substrate behind the result
// cache.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-apartment-search/internal/domain"
)

// KVStore persists cache entries as rows of domain.CacheRecord. It is safe for
// concurrent use; serialization is left to SQLite.
type KVStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewKVStore returns a KVStore over db. The table must already exist
// (see AutoMigrate).
func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// Get returns the value for key, or ok=false when no row exists.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec domain.CacheRecord
	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(rec.Value), true, nil
}

// Set upserts value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	rec := domain.CacheRecord{
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

// Remove deletes key. Missing keys are not an error.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&domain.CacheRecord{}).Error
}

// Keys lists every stored key ordered by key.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&domain.CacheRecord{}).
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

// Count returns the number of stored rows.
func (s *KVStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.CacheRecord{}).Count(&n).Error
	return n, err
}
