package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

const MinReasonLength = 20

type AdoptionService struct {
	Forms   *repo.AdoptionRepo
	Animals *repo.AnimalRepo
	Users   *repo.UserRepo
	Events  events.Publisher
}

type AdoptionRequest struct {
	AnimalID         uint
	Reason           string
	LivesInApartment bool
	HasBalconyNets   bool
	PhotoURI         *string
}

// Submit files a request for an available animal. The applicant's contact
// data and the animal's name are copied onto the form.
func (s *AdoptionService) Submit(ctx context.Context, userID uint, req AdoptionRequest) (*models.AdoptionForm, error) {
	l := logging.FromContext(ctx).With("svc", "adoption.submit")

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) < MinReasonLength {
		return nil, fmt.Errorf("reason must have at least %d characters: %w", MinReasonLength, ErrValidation)
	}
	if req.LivesInApartment && !req.HasBalconyNets {
		return nil, fmt.Errorf("balcony safety nets are required to adopt in an apartment: %w", ErrValidation)
	}

	animal, err := s.Animals.GetAnimal(ctx, req.AnimalID)
	if err != nil {
		return nil, err
	}
	if animal.IsAdopted {
		return nil, fmt.Errorf("%s has already been adopted: %w", animal.Name, repo.ErrConflict)
	}
	open, err := s.Forms.HasOpenForm(ctx, userID, animal.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("a request for %s is already pending: %w", animal.Name, repo.ErrConflict)
	}
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	form := &models.AdoptionForm{
		UserID:           user.ID,
		AnimalID:         animal.ID,
		AnimalName:       animal.Name,
		UserName:         user.Name,
		UserEmail:        user.Email,
		UserPhone:        user.Phone,
		Reason:           reason,
		LivesInApartment: req.LivesInApartment,
		HasBalconyNets:   req.HasBalconyNets,
		PhotoURI:         req.PhotoURI,
	}
	if _, err := s.Forms.SubmitForm(ctx, form); err != nil {
		l.Error("submit_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeAdoptionSubmitted, *form)
	l.Info("adoption_submitted", "form_id", form.ID, "animal_id", animal.ID)
	return form, nil
}

func (s *AdoptionService) Mine(ctx context.Context, userID uint) ([]models.AdoptionForm, error) {
	return s.Forms.ListByUser(ctx, userID)
}

func (s *AdoptionService) All(ctx context.Context) ([]models.AdoptionForm, error) {
	return s.Forms.ListAll(ctx)
}

func (s *AdoptionService) MineFeed(userID uint) *watch.Feed[[]models.AdoptionForm] {
	return s.Forms.UserForms(userID)
}

func (s *AdoptionService) AllFeed() *watch.Feed[[]models.AdoptionForm] {
	return s.Forms.AllForms()
}

// SetStatus records the review decision. Approving a request also marks
// the animal adopted.
func (s *AdoptionService) SetStatus(ctx context.Context, formID uint, status models.AdoptionStatus) (*models.AdoptionForm, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	form, err := s.Forms.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	updated, err := s.Forms.UpdateFormStatus(ctx, *form, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeAdoptionStatusChanged, *updated)

	if status == models.StatusApproved {
		a, err := s.Animals.AdoptAnimal(ctx, updated.AnimalID)
		if err != nil {
			logging.FromContext(ctx).Warn("approve_adopt_failed", "animal_id", updated.AnimalID, "error", err)
		} else {
			publish(ctx, s.Events, events.TopicAnimals, key(a.ID), events.AnimalChanged{
				Type:     events.TypeAnimalAdopted,
				AnimalID: a.ID,
				Name:     a.Name,
			})
		}
	}
	return updated, nil
}

func (s *AdoptionService) publish(ctx context.Context, typ string, f models.AdoptionForm) {
	publish(ctx, s.Events, events.TopicAdoptions, key(f.ID), events.AdoptionChanged{
		Type:     typ,
		FormID:   f.ID,
		UserID:   f.UserID,
		AnimalID: f.AnimalID,
		Status:   string(f.Status),
	})
}
