package session

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/amilimetros/internal/models"
)

// GormBackend keeps sessions in the session_entries table of the main store.
type GormBackend struct {
	DB *gorm.DB
}

func (b *GormBackend) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	var rows []models.SessionEntry
	if err := b.DB.WithContext(ctx).Where("session_id = ?", sid).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (b *GormBackend) Put(ctx context.Context, sid string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.SessionEntry, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.SessionEntry{SessionID: sid, Key: k, Value: v})
	}
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *GormBackend) Delete(ctx context.Context, sid string) error {
	if err := b.DB.WithContext(ctx).Where("session_id = ?", sid).Delete(&models.SessionEntry{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
