package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

// AnimalRepo owns the adoption state machine: an animal goes from available
// to adopted and never back.
type AnimalRepo struct {
	base
	DB *gorm.DB
}

func NewAnimalRepo(db *gorm.DB, hub *watch.Hub) *AnimalRepo {
	return &AnimalRepo{base: newBase("animal", hub), DB: db}
}

// AddAnimal inserts a as available regardless of its adopted flag.
func (r *AnimalRepo) AddAnimal(ctx context.Context, a *models.Animal) (uint, error) {
	a.ID = 0
	a.IsAdopted = false
	err := r.DB.WithContext(ctx).Create(a).Error
	if err = r.done("add", err); err != nil {
		return 0, err
	}
	r.notify(models.TableAnimals)
	return a.ID, nil
}

// UpdateAnimal writes the descriptive fields. The adopted flag is left as
// stored; a.IsAdopted is refreshed from the store on return.
func (r *AnimalRepo) UpdateAnimal(ctx context.Context, a *models.Animal) error {
	if a.ID == 0 {
		return r.done("update", fmt.Errorf("animal without id: %w", ErrNotFound))
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Animal{ID: a.ID}).Select("*").Omit("id", "is_adopted").Updates(a)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("animal %d: %w", a.ID, ErrNotFound)
		}
		var stored models.Animal
		if err := tx.Select("is_adopted").First(&stored, a.ID).Error; err != nil {
			return err
		}
		a.IsAdopted = stored.IsAdopted
		return nil
	})
	if err = r.done("update", err); err != nil {
		return err
	}
	r.notify(models.TableAnimals)
	return nil
}

func (r *AnimalRepo) DeleteAnimal(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Animal{}, id)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = fmt.Errorf("animal %d: %w", id, ErrNotFound)
	}
	if err = r.done("delete", err); err != nil {
		return err
	}
	r.notify(models.TableAnimals)
	return nil
}

func (r *AnimalRepo) GetAnimal(ctx context.Context, id uint) (*models.Animal, error) {
	var a models.Animal
	err := r.DB.WithContext(ctx).First(&a, id).Error
	if err = r.done("get", err); err != nil {
		return nil, err
	}
	return &a, nil
}

// AdoptAnimal marks the animal adopted and returns the stored record.
// Adopting an animal that is already adopted succeeds without change.
func (r *AnimalRepo) AdoptAnimal(ctx context.Context, id uint) (*models.Animal, error) {
	var a models.Animal
	changed := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		if a.IsAdopted {
			return nil
		}
		if err := tx.Model(&a).Update("is_adopted", true).Error; err != nil {
			return err
		}
		a.IsAdopted = true
		changed = true
		return nil
	})
	if err = r.done("adopt", err); err != nil {
		return nil, err
	}
	if changed {
		r.notify(models.TableAnimals)
	}
	return &a, nil
}

func (r *AnimalRepo) ListAvailable(ctx context.Context) ([]models.Animal, error) {
	return r.list("list_available", r.DB.WithContext(ctx).Where("is_adopted = ?", false))
}

func (r *AnimalRepo) ListAll(ctx context.Context) ([]models.Animal, error) {
	return r.list("list_all", r.DB.WithContext(ctx))
}

func (r *AnimalRepo) list(op string, q *gorm.DB) ([]models.Animal, error) {
	out := []models.Animal{}
	err := q.Order("name").Order("id").Find(&out).Error
	if err = r.done(op, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnimalRepo) AvailableAnimals() *watch.Feed[[]models.Animal] {
	return watch.Open(r.hub, "animals:available", r.ListAvailable, models.TableAnimals)
}

func (r *AnimalRepo) AllAnimals() *watch.Feed[[]models.Animal] {
	return watch.Open(r.hub, "animals:all", r.ListAll, models.TableAnimals)
}
