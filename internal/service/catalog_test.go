package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/repo"
)

type fakeEngine struct {
	hits    []models.Product
	indexed []uint
	removed []uint
	err     error
}

func (f *fakeEngine) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	return int64(len(f.hits)), f.hits, f.err
}

func (f *fakeEngine) Index(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeEngine) Remove(_ context.Context, id uint) error {
	f.removed = append(f.removed, id)
	return f.err
}

func TestCatalogService_CreateValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bad := models.Product{Name: "X", Description: "valid description", Price: decimal.NewFromInt(10), Category: "Otros"}
	require.ErrorIs(t, env.Catalog.Create(ctx, &bad), ErrValidation)

	free := models.Product{Name: "X", Description: "valid description", Price: decimal.Zero, Category: models.CategoryToys}
	require.ErrorIs(t, env.Catalog.Create(ctx, &free), ErrValidation)
}

func TestCatalogService_IndexesAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	engine := &fakeEngine{}
	env.Catalog.Engine = engine

	p := models.Product{Name: "Hueso", Description: "hueso de cuero", Price: decimal.NewFromInt(1990), Category: models.CategoryToys}
	require.NoError(t, env.Catalog.Create(ctx, &p))
	p.Name = "Hueso XL"
	require.NoError(t, env.Catalog.Update(ctx, &p))
	require.NoError(t, env.Catalog.Delete(ctx, p.ID))

	assert.Equal(t, []uint{p.ID, p.ID}, engine.indexed)
	assert.Equal(t, []uint{p.ID}, engine.removed)

	var types []string
	for _, m := range env.Events.Messages() {
		if m.Topic == events.TopicProducts {
			types = append(types, m.Event.(events.ProductChanged).Type)
		}
	}
	assert.Equal(t, []string{events.TypeProductCreated, events.TypeProductUpdated, events.TypeProductDeleted}, types)
}

func TestCatalogService_IndexFailureIsLogged(t *testing.T) {
	env := newTestEnv(t)
	env.Catalog.Engine = &fakeEngine{err: errors.New("es down")}

	p := models.Product{Name: "Hueso", Description: "hueso de cuero", Price: decimal.NewFromInt(1990), Category: models.CategoryToys}
	require.NoError(t, env.Catalog.Create(context.Background(), &p))
	require.NoError(t, env.Catalog.Delete(context.Background(), p.ID))
}

func TestCatalogService_ListAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, err := env.Catalog.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	hygiene, err := env.Catalog.List(ctx, "Higiene")
	require.NoError(t, err)
	assert.Len(t, hygiene, 2)

	_, err = env.Catalog.List(ctx, "Otros")
	require.ErrorIs(t, err, ErrValidation)

	res, err := env.Catalog.Search(ctx, "gato", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Products, 2)
	assert.Equal(t, 1, res.Page)

	_, err = env.Catalog.Search(ctx, "   ", 1, 10)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.Get(ctx, 9999)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCatalogService_SearchHitsComeFromStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := models.Product{Name: "Rascador", Description: "rascador de carton", Price: decimal.NewFromInt(5000), Category: models.CategoryToys}
	require.NoError(t, env.Catalog.Create(ctx, &first))
	second := models.Product{Name: "Raton", Description: "raton de juguete", Price: decimal.NewFromInt(900), Category: models.CategoryToys}
	require.NoError(t, env.Catalog.Create(ctx, &second))

	stale := second
	stale.Price = decimal.NewFromInt(1)
	env.Catalog.Engine = &fakeEngine{hits: []models.Product{stale, {ID: 99999, Name: "Gone"}, first}}

	res, err := env.Catalog.Search(ctx, "ra", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	assert.Equal(t, second.ID, res.Products[0].ID)
	assert.True(t, decimal.NewFromInt(900).Equal(res.Products[0].Price))
	assert.Equal(t, first.ID, res.Products[1].ID)
}
