package domain

import "time"

// CacheRecord is one row of the namespaced key→JSON store that backs the
// result cache. Value holds the serialized cache envelope; the store itself
// knows nothing about TTLs.
type CacheRecord struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Value     string    `gorm:"type:TEXT NOT NULL"`
	UpdatedAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (CacheRecord) TableName() string { return "cache_records" }
