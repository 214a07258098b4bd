package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type AnimalService struct {
	Animals *repo.AnimalRepo
	Events  events.Publisher
}

func (s *AnimalService) List(ctx context.Context, includeAdopted bool) ([]models.Animal, error) {
	if includeAdopted {
		return s.Animals.ListAll(ctx)
	}
	return s.Animals.ListAvailable(ctx)
}

func (s *AnimalService) Feed(includeAdopted bool) *watch.Feed[[]models.Animal] {
	if includeAdopted {
		return s.Animals.AllAnimals()
	}
	return s.Animals.AvailableAnimals()
}

func (s *AnimalService) Get(ctx context.Context, id uint) (*models.Animal, error) {
	return s.Animals.GetAnimal(ctx, id)
}

func (s *AnimalService) Create(ctx context.Context, a *models.Animal) error {
	if a.Age < 0 {
		return fmt.Errorf("age cannot be negative: %w", ErrValidation)
	}
	if _, err := s.Animals.AddAnimal(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, events.TypeAnimalCreated, *a)
	return nil
}

func (s *AnimalService) Update(ctx context.Context, a *models.Animal) error {
	if a.Age < 0 {
		return fmt.Errorf("age cannot be negative: %w", ErrValidation)
	}
	if err := s.Animals.UpdateAnimal(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, events.TypeAnimalUpdated, *a)
	return nil
}

func (s *AnimalService) Delete(ctx context.Context, id uint) error {
	if err := s.Animals.DeleteAnimal(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TypeAnimalDeleted, models.Animal{ID: id})
	return nil
}

func (s *AnimalService) Adopt(ctx context.Context, id uint) (*models.Animal, error) {
	a, err := s.Animals.AdoptAnimal(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("adopt_failed", "animal_id", id, "error", err)
		return nil, err
	}
	s.publish(ctx, events.TypeAnimalAdopted, *a)
	return a, nil
}

func (s *AnimalService) publish(ctx context.Context, typ string, a models.Animal) {
	publish(ctx, s.Events, events.TopicAnimals, key(a.ID), events.AnimalChanged{
		Type:     typ,
		AnimalID: a.ID,
		Name:     a.Name,
	})
}
