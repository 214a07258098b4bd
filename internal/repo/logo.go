package repo

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/amilimetros/internal/models"
)

// LogoName is the key of the application logo.
const LogoName = "app_logo"

// LogoRepo stores the single application logo. The first successful Load
// is cached for the life of the repository.
type LogoRepo struct {
	base
	DB *gorm.DB

	mu     sync.Mutex
	cached *models.Logo
}

func NewLogoRepo(db *gorm.DB) *LogoRepo {
	return &LogoRepo{base: newBase("logo", nil), DB: db}
}

// Put inserts or replaces the logo stored under name.
func (r *LogoRepo) Put(ctx context.Context, name string, image []byte) error {
	logo := models.Logo{Name: name, Image: image}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"image"}),
	}).Create(&logo).Error
	if err = r.done("put", err); err != nil {
		return err
	}

	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	return nil
}

func (r *LogoRepo) Load(ctx context.Context) (*models.Logo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		return r.cached, nil
	}

	var logo models.Logo
	err := r.DB.WithContext(ctx).Where("name = ?", LogoName).First(&logo).Error
	if err = r.done("load", err); err != nil {
		return nil, err
	}
	r.cached = &logo
	return r.cached, nil
}
