package routemap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Record is the persisted form of an Entry.
type Record struct {
	ID          uint   `gorm:"primaryKey"`
	Position    int    `gorm:"column:position;not null;index"`
	Slug        string `gorm:"column:slug;size:512;not null;uniqueIndex"`
	PageID      string `gorm:"column:page_id;size:64;not null"`
	Title       string `gorm:"column:title;size:512"`
	Description string `gorm:"column:description;type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName pins the table name independent of gorm's pluralisation.
func (Record) TableName() string {
	return "route_map_entries"
}

var errMissingDatabase = errors.New("routemap: database handle is required")

// SQLStore keeps the route list in a gorm-managed table.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps an open database. The schema is migrated by the database package.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &SQLStore{db: db}, nil
}

// Load returns entries in the order they were saved.
func (s *SQLStore) Load(ctx context.Context) ([]Entry, error) {
	var records []Record
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("routemap: load records: %w", err)
	}
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, Entry{
			Slug:        record.Slug,
			PageID:      record.PageID,
			Title:       record.Title,
			Description: record.Description,
		})
	}
	return entries, nil
}

// Save replaces the table contents in a single transaction. Duplicate slugs keep the first entry.
func (s *SQLStore) Save(ctx context.Context, entries []Entry) error {
	records := make([]Record, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, exists := seen[entry.Slug]; exists {
			continue
		}
		seen[entry.Slug] = struct{}{}
		records = append(records, Record{
			Position:    len(records),
			Slug:        entry.Slug,
			PageID:      entry.PageID,
			Title:       entry.Title,
			Description: entry.Description,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("routemap: clear records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&records, 100).Error; err != nil {
			return fmt.Errorf("routemap: insert records: %w", err)
		}
		return nil
	})
}
