package postgres

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists selections in PostgreSQL using GORM so several portal instances can
// share one profile. Caller manages DB lifecycle; schema comes from platform/migrations.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type selectionRecord struct {
	Profile   string         `gorm:"primaryKey;column:profile;size:128"`
	Key       string         `gorm:"primaryKey;column:key;size:32"`
	Value     string         `gorm:"column:value"`
	Recent    pq.StringArray `gorm:"column:recent;type:text[]"`
	UpdatedAt time.Time      `gorm:"column:updated_at;index"`
}

func (selectionRecord) TableName() string { return "portal_selections" }

func (s *Store) Load(ctx context.Context, profile string, key domain.Key) (*domain.Record, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec selectionRecord
	if err := s.db.WithContext(ctx).First(&rec, "profile = ? AND key = ?", profile, string(key)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

// Save upserts the record keyed by profile and key.
func (s *Store) Save(ctx context.Context, record domain.Record) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	rec := toRecord(record)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "recent", "updated_at"}),
		}).
		Create(&rec).Error
}

// Reset removes every selection stored for profile.
func (s *Store) Reset(ctx context.Context, profile string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&selectionRecord{}, "profile = ?", profile).Error
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres selection store not configured")
	}
	return nil
}

func toRecord(record domain.Record) selectionRecord {
	recent := pq.StringArray(slices.Clone(record.Recent))
	if recent == nil {
		recent = pq.StringArray{}
	}
	return selectionRecord{
		Profile:   record.Profile,
		Key:       string(record.Key),
		Value:     record.Value,
		Recent:    recent,
		UpdatedAt: record.UpdatedAt,
	}
}

func (r selectionRecord) toDomain() *domain.Record {
	return &domain.Record{
		Profile:   r.Profile,
		Key:       domain.Key(r.Key),
		Value:     r.Value,
		Recent:    []string(r.Recent),
		UpdatedAt: r.UpdatedAt,
	}
}
