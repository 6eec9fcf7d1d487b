package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the portal schema. Adapters do not automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&selectionRecord{})
}

// Selection schema mirrors the selection Postgres adapter.
type selectionRecord struct {
	Profile   string         `gorm:"primaryKey;column:profile;size:128"`
	Key       string         `gorm:"primaryKey;column:key;size:32"`
	Value     string         `gorm:"column:value"`
	Recent    pq.StringArray `gorm:"column:recent;type:text[]"`
	UpdatedAt time.Time      `gorm:"column:updated_at;index"`
}

func (selectionRecord) TableName() string { return "portal_selections" }
