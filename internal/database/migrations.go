package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationNormalizeRoutePageIDs = "2026-10-01_normalize_route_page_ids"
	migrationNormalizeRouteSlugs   = "2026-10-02_normalize_route_slugs"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationNormalizeRoutePageIDs, apply: normalizeRoutePageIDs},
		{name: migrationNormalizeRouteSlugs, apply: normalizeRouteSlugs},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Transaction(migration.apply); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// normalizeRoutePageIDs rewrites compact 32 hex page ids into the dashed form.
func normalizeRoutePageIDs(db *gorm.DB) error {
	var records []routemap.Record
	if err := db.Find(&records).Error; err != nil {
		return err
	}
	for _, record := range records {
		normalized := notion.NormalizeID(record.PageID)
		if normalized == record.PageID {
			continue
		}
		if err := db.Model(&routemap.Record{}).Where("id = ?", record.ID).Update("page_id", normalized).Error; err != nil {
			return err
		}
	}
	return nil
}

// normalizeRouteSlugs canonicalizes stored slugs; later rows that collide are removed
// before any row is renamed so the unique index never trips.
func normalizeRouteSlugs(db *gorm.DB) error {
	var records []routemap.Record
	if err := db.Order("position ASC, id ASC").Find(&records).Error; err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(records))
	renames := make(map[uint]string)
	var duplicates []uint
	for _, record := range records {
		normalized := slug.Normalize(record.Slug)
		if _, exists := seen[normalized]; exists {
			duplicates = append(duplicates, record.ID)
			continue
		}
		seen[normalized] = struct{}{}
		if normalized != record.Slug {
			renames[record.ID] = normalized
		}
	}
	if len(duplicates) > 0 {
		if err := db.Delete(&routemap.Record{}, duplicates).Error; err != nil {
			return err
		}
	}
	for id, normalized := range renames {
		if err := db.Model(&routemap.Record{}).Where("id = ?", id).Update("slug", normalized).Error; err != nil {
			return err
		}
	}
	return nil
}
