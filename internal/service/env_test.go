package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/db/dbtest"
	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/session"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type testEnv struct {
	Events    *events.Recorder
	Sessions  *session.Store
	Users     *repo.UserRepo
	Products  *repo.ProductRepo
	Animals   *repo.AnimalRepo
	Auth      *AuthService
	Catalog   *CatalogService
	Cart      *CartService
	Zoo       *AnimalService
	Adoptions *AdoptionService
}

var testSecret = []byte("test-jwt-secret")

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := dbtest.NewSeeded(t)
	hub := watch.NewHub(50*time.Millisecond, nil)
	rec := &events.Recorder{}

	users := repo.NewUserRepo(gdb, hub)
	products := repo.NewProductRepo(gdb, hub)
	animals := repo.NewAnimalRepo(gdb, hub)
	sessions := session.NewStore(&session.GormBackend{DB: gdb})

	return &testEnv{
		Events:   rec,
		Sessions: sessions,
		Users:    users,
		Products: products,
		Animals:  animals,
		Auth: &AuthService{
			Users: users, Sessions: sessions, Events: rec,
			JWTSecret: testSecret, AccessTTL: time.Hour,
		},
		Catalog: &CatalogService{Products: products, Events: rec},
		Cart:    &CartService{Cart: repo.NewCartRepo(gdb, hub), Products: products, Events: rec},
		Zoo:     &AnimalService{Animals: animals, Events: rec},
		Adoptions: &AdoptionService{
			Forms: repo.NewAdoptionRepo(gdb, hub), Animals: animals, Users: users, Events: rec,
		},
	}
}

func (e *testEnv) demoUser(t *testing.T) *models.User {
	t.Helper()
	u, err := e.Users.GetUserByEmail(context.Background(), "user@demo.com")
	require.NoError(t, err)
	return u
}

func (e *testEnv) animal(t *testing.T, name string) *models.Animal {
	t.Helper()
	all, err := e.Animals.ListAll(context.Background())
	require.NoError(t, err)
	for i := range all {
		if all[i].Name == name {
			return &all[i]
		}
	}
	t.Fatalf("animal %s not seeded", name)
	return nil
}
