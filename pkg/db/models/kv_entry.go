package models

import "time"

// KVEntry stores one whole JSON document under a namespaced key.
type KVEntry struct {
	Key       string    `gorm:"column:doc_key;type:text;primaryKey"`
	Value     string    `gorm:"column:doc_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table created by the kv_entries migration.
func (KVEntry) TableName() string {
	return "kv_entries"
}
