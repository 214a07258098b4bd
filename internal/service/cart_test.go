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

func (e *testEnv) priced(t *testing.T, price int64) models.Product {
	t.Helper()
	p := models.Product{Name: "Test", Description: "test product", Price: decimal.NewFromInt(price), Category: models.CategoryToys}
	require.NoError(t, e.Catalog.Create(context.Background(), &p))
	return p
}

func TestCartService_AddMergesAndTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)
	p := env.priced(t, 1000)

	_, err := env.Cart.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	item, err := env.Cart.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(view.Total))

	msg, ok := env.Events.Last(events.TopicCart)
	require.True(t, ok)
	assert.Equal(t, events.TypeItemAdded, msg.Event.(events.CartChanged).Type)
}

func TestCartService_AddValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)
	p := env.priced(t, 100)

	_, err := env.Cart.Add(ctx, u.ID, p.ID, -1)
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.Cart.Add(ctx, u.ID, 0, 1)
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.Cart.Add(ctx, u.ID, 9999, 1)
	require.ErrorIs(t, err, repo.ErrNotFound)

	item, err := env.Cart.Add(ctx, u.ID, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_SetQuantityZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)
	p := env.priced(t, 1000)

	item, err := env.Cart.Add(ctx, u.ID, p.ID, 5)
	require.NoError(t, err)

	updated, err := env.Cart.SetQuantity(ctx, u.ID, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, updated)

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	msg, ok := env.Events.Last(events.TopicCart)
	require.True(t, ok)
	assert.Equal(t, events.TypeItemRemoved, msg.Event.(events.CartChanged).Type)
}

func TestCartService_ForeignLinesAreHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)
	admin, err := env.Users.GetUserByEmail(ctx, "admin@amilimetros.com")
	require.NoError(t, err)

	item, err := env.Cart.Add(ctx, u.ID, env.priced(t, 10).ID, 1)
	require.NoError(t, err)

	_, err = env.Cart.SetQuantity(ctx, admin.ID, item.ID, 4)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.ErrorIs(t, env.Cart.Remove(ctx, admin.ID, item.ID), repo.ErrNotFound)
	require.NoError(t, env.Cart.Remove(ctx, u.ID, item.ID))
}

func TestCartService_Checkout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)

	empty, err := env.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Total.IsZero())

	_, err = env.Cart.Add(ctx, u.ID, env.priced(t, 1500).ID, 2)
	require.NoError(t, err)

	receipt, err := env.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3000).Equal(receipt.Total))

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	msg, ok := env.Events.Last(events.TopicCart)
	require.True(t, ok)
	ev := msg.Event.(events.CartCheckedOut)
	assert.Equal(t, 1, ev.Items)
	assert.True(t, decimal.NewFromInt(3000).Equal(ev.Total))
}

func TestCartService_CheckoutWithDeletedProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.demoUser(t)
	p := env.priced(t, 700)

	_, err := env.Cart.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	require.NoError(t, env.Products.DeleteProduct(ctx, p.ID))

	receipt, err := env.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.True(t, decimal.NewFromInt(1400).Equal(receipt.Total))

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartService_PublishFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.Events.Err = errors.New("broker down")
	u := env.demoUser(t)

	_, err := env.Cart.Add(context.Background(), u.ID, env.priced(t, 10).ID, 1)
	require.NoError(t, err)
}
