package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/models"
)

func TestAnimalService_AdoptMax(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dog := env.animal(t, "Max")

	a, err := env.Zoo.Adopt(ctx, dog.ID)
	require.NoError(t, err)
	assert.True(t, a.IsAdopted)

	available, err := env.Zoo.List(ctx, false)
	require.NoError(t, err)
	for _, x := range available {
		assert.NotEqual(t, "Max", x.Name)
	}

	all, err := env.Zoo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	msg, ok := env.Events.Last(events.TopicAnimals)
	require.True(t, ok)
	assert.Equal(t, events.TypeAnimalAdopted, msg.Event.(events.AnimalChanged).Type)
}

func TestAnimalService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.ErrorIs(t, env.Zoo.Create(ctx, &models.Animal{Name: "X", Age: -1}), ErrValidation)

	a := models.Animal{Name: "Coco", Species: "Conejo", Breed: "Mini Lop", Age: 1, Description: "Conejo tranquilo"}
	require.NoError(t, env.Zoo.Create(ctx, &a))
	a.Description = "Conejo muy tranquilo"
	require.NoError(t, env.Zoo.Update(ctx, &a))

	got, err := env.Zoo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Conejo muy tranquilo", got.Description)

	require.NoError(t, env.Zoo.Delete(ctx, a.ID))
	_, err = env.Zoo.Get(ctx, a.ID)
	assert.Error(t, err)
}
