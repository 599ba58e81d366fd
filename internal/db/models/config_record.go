// Package models contains database model definitions.
package models

import (
	"time"
)

// ConfigRecord is a single configuration value owned by a principal.
// The pair (Key, CreatedBy) is the logical primary key and is enforced by a unique index.
type ConfigRecord struct {
	// ID is the surrogate primary key.
	ID uint64 `gorm:"primaryKey"`
	// Key is the normalized (trimmed, upper case) configuration name.
	Key string `gorm:"column:config_key;size:191;not null;uniqueIndex:idx_configs_key_owner,priority:1"`
	// Value is the textual storage encoding of the payload.
	Value string `gorm:"type:text"`
	// CreatedBy is the normalized (trimmed, lower case) owner. Empty means shared.
	CreatedBy string `gorm:"column:created_by;size:191;not null;uniqueIndex:idx_configs_key_owner,priority:2"`
	// CreatedAt is set by gorm on insert.
	CreatedAt time.Time
	// UpdatedAt is set by gorm on insert and refreshed on every upsert.
	UpdatedAt time.Time
}

// TableName keeps the table name stable across naming strategies.
func (ConfigRecord) TableName() string {
	return "configs"
}
