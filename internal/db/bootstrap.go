package db

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
)

// Bootstrap opens the store, checks the schema version and seeds demo data
// when seed is set.
func Bootstrap(ctx context.Context, dsn, driver string, seed bool, l *slog.Logger) (*gorm.DB, error) {
	db, err := OpenDriver(ctx, dsn, driver)
	if err != nil {
		return nil, err
	}

	recreated, err := EnsureSchema(ctx, db, SchemaVersion)
	if err != nil {
		_ = Close(db)
		return nil, err
	}
	if recreated {
		l.Info("schema_recreated", "version", SchemaVersion)
	}

	if seed {
		if err := Seed(ctx, db); err != nil {
			_ = Close(db)
			return nil, err
		}
	}
	return db, nil
}
