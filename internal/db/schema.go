package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/models"
)

// SchemaVersion is compared with the version stored in schema_meta when the
// store is opened. There are no migration scripts: a mismatch drops every
// table and recreates the schema empty.
const SchemaVersion = 1

// EnsureSchema brings the store to SchemaVersion. It reports whether the
// tables were (re)created.
func EnsureSchema(ctx context.Context, db *gorm.DB, version int) (bool, error) {
	tx := db.WithContext(ctx)
	m := tx.Migrator()

	current := 0
	if m.HasTable(&models.SchemaMeta{}) {
		var meta models.SchemaMeta
		err := tx.First(&meta, 1).Error
		switch {
		case err == nil:
			current = meta.Version
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return false, fmt.Errorf("read schema version: %w", err)
		}
	}

	if current == version {
		if err := tx.AutoMigrate(models.All()...); err != nil {
			return false, fmt.Errorf("migrate: %w", err)
		}
		return false, nil
	}

	if err := dropAll(tx); err != nil {
		return false, err
	}
	if err := tx.AutoMigrate(models.All()...); err != nil {
		return false, fmt.Errorf("migrate: %w", err)
	}
	if err := tx.Save(&models.SchemaMeta{ID: 1, Version: version}).Error; err != nil {
		return false, fmt.Errorf("write schema version: %w", err)
	}
	return true, nil
}

func dropAll(tx *gorm.DB) error {
	all := models.All()
	// children first so foreign keys added later never block the drop
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
