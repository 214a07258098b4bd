package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type AdoptionRepo struct {
	base
	DB *gorm.DB
}

func NewAdoptionRepo(db *gorm.DB, hub *watch.Hub) *AdoptionRepo {
	return &AdoptionRepo{base: newBase("adoption", hub), DB: db}
}

// SubmitForm stores f as a new request. Status and submission time default
// to pending and now.
func (r *AdoptionRepo) SubmitForm(ctx context.Context, f *models.AdoptionForm) (uint, error) {
	f.ID = 0
	err := r.DB.WithContext(ctx).Create(f).Error
	if err = r.done("submit", err); err != nil {
		return 0, err
	}
	r.notify(models.TableAdoptionForms)
	return f.ID, nil
}

func (r *AdoptionRepo) GetForm(ctx context.Context, id uint) (*models.AdoptionForm, error) {
	var f models.AdoptionForm
	err := r.DB.WithContext(ctx).First(&f, id).Error
	if err = r.done("get", err); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *AdoptionRepo) ListByUser(ctx context.Context, userID uint) ([]models.AdoptionForm, error) {
	return r.list("list_by_user", r.DB.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *AdoptionRepo) ListAll(ctx context.Context) ([]models.AdoptionForm, error) {
	return r.list("list_all", r.DB.WithContext(ctx))
}

// HasOpenForm reports whether the user already has a pending request for
// the animal.
func (r *AdoptionRepo) HasOpenForm(ctx context.Context, userID, animalID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.AdoptionForm{}).
		Where("user_id = ? AND animal_id = ? AND status = ?", userID, animalID, models.StatusPending).
		Count(&n).Error
	if err = r.done("has_open", err); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AdoptionRepo) list(op string, q *gorm.DB) ([]models.AdoptionForm, error) {
	out := []models.AdoptionForm{}
	err := q.Order("submitted_at DESC").Order("id DESC").Find(&out).Error
	if err = r.done(op, err); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFormStatus writes only the status column of form.ID and returns
// the caller's copy carrying the new status.
func (r *AdoptionRepo) UpdateFormStatus(ctx context.Context, form models.AdoptionForm, status models.AdoptionStatus) (*models.AdoptionForm, error) {
	res := r.DB.WithContext(ctx).Model(&models.AdoptionForm{}).
		Where("id = ?", form.ID).
		Update("status", status)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = fmt.Errorf("adoption form %d: %w", form.ID, ErrNotFound)
	}
	if err = r.done("update_status", err); err != nil {
		return nil, err
	}
	r.notify(models.TableAdoptionForms)
	form.Status = status
	return &form, nil
}

func (r *AdoptionRepo) UserForms(userID uint) *watch.Feed[[]models.AdoptionForm] {
	return watch.Open(r.hub, fmt.Sprintf("adoptions:user:%d", userID), func(ctx context.Context) ([]models.AdoptionForm, error) {
		return r.ListByUser(ctx, userID)
	}, models.TableAdoptionForms)
}

func (r *AdoptionRepo) AllForms() *watch.Feed[[]models.AdoptionForm] {
	return watch.Open(r.hub, "adoptions:all", r.ListAll, models.TableAdoptionForms)
}
