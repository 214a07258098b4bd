package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/db/dbtest"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type testEnv struct {
	DB        *gorm.DB
	Hub       *watch.Hub
	Cart      *CartRepo
	Animals   *AnimalRepo
	Products  *ProductRepo
	Adoptions *AdoptionRepo
	Users     *UserRepo
	Logo      *LogoRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return envFor(dbtest.New(t))
}

func newSeededEnv(t *testing.T) *testEnv {
	t.Helper()
	return envFor(dbtest.NewSeeded(t))
}

func envFor(gdb *gorm.DB) *testEnv {
	hub := watch.NewHub(50*time.Millisecond, nil)
	return &testEnv{
		DB:        gdb,
		Hub:       hub,
		Cart:      NewCartRepo(gdb, hub),
		Animals:   NewAnimalRepo(gdb, hub),
		Products:  NewProductRepo(gdb, hub),
		Adoptions: NewAdoptionRepo(gdb, hub),
		Users:     NewUserRepo(gdb, hub),
		Logo:      NewLogoRepo(gdb),
	}
}

func (e *testEnv) product(t *testing.T, name string, price int64) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: "test product description",
		Price:       decimal.NewFromInt(price),
		Category:    models.CategoryToys,
	}
	_, err := e.Products.AddProduct(context.Background(), &p)
	require.NoError(t, err)
	return p
}

func (e *testEnv) user(t *testing.T, email string) uint {
	t.Helper()
	id, err := e.Users.Register(context.Background(), "Test User", email, "912345678", "Passw0rd!")
	require.NoError(t, err)
	return id
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}
	var zero T
	return zero
}
