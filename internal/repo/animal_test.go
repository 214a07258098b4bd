package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/models"
)

func findAnimal(list []models.Animal, name string) *models.Animal {
	for i := range list {
		if list[i].Name == name {
			return &list[i]
		}
	}
	return nil
}

func TestAdoptAnimal_LeavesAvailableList(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()

	available, err := env.Animals.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 6)
	dog := findAnimal(available, "Max")
	require.NotNil(t, dog)

	adopted, err := env.Animals.AdoptAnimal(ctx, dog.ID)
	require.NoError(t, err)
	assert.True(t, adopted.IsAdopted)
	assert.Equal(t, "Max", adopted.Name)

	available, err = env.Animals.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 5)
	assert.Nil(t, findAnimal(available, "Max"))

	all, err := env.Animals.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.NotNil(t, findAnimal(all, "Max"))
	assert.True(t, findAnimal(all, "Max").IsAdopted)
}

func TestAdoptAnimal_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := models.Animal{Name: "Toby", Species: "Perro", Breed: "Beagle", Age: 4, Description: "Enérgico y amigable"}
	id, err := env.Animals.AddAnimal(ctx, &a)
	require.NoError(t, err)

	_, err = env.Animals.AdoptAnimal(ctx, id)
	require.NoError(t, err)
	again, err := env.Animals.AdoptAnimal(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.IsAdopted)
}

func TestAdoptAnimal_Unknown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Animals.AdoptAnimal(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnimal_AdoptedFlagNeverResets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := models.Animal{Name: "Luna", Species: "Gato", Breed: "Siamés", Age: 2, Description: "Gata tranquila", IsAdopted: true}
	id, err := env.Animals.AddAnimal(ctx, &a)
	require.NoError(t, err)
	got, err := env.Animals.GetAnimal(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsAdopted, "new animals start available")

	_, err = env.Animals.AdoptAnimal(ctx, id)
	require.NoError(t, err)

	edit := *got
	edit.Age = 3
	edit.IsAdopted = false
	require.NoError(t, env.Animals.UpdateAnimal(ctx, &edit))
	assert.True(t, edit.IsAdopted)

	got, err = env.Animals.GetAnimal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Age)
	assert.True(t, got.IsAdopted)
}

func TestAnimal_UpdateAndDeleteMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.Animals.UpdateAnimal(ctx, &models.Animal{ID: 77, Name: "Nadie"})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, env.Animals.DeleteAnimal(ctx, 77), ErrNotFound)
}

func TestAnimal_DeleteAdopted(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()
	all, err := env.Animals.ListAll(ctx)
	require.NoError(t, err)
	rocky := findAnimal(all, "Rocky")
	require.NotNil(t, rocky)

	_, err = env.Animals.AdoptAnimal(ctx, rocky.ID)
	require.NoError(t, err)
	require.NoError(t, env.Animals.DeleteAnimal(ctx, rocky.ID))

	_, err = env.Animals.GetAnimal(ctx, rocky.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAvailableAnimals_Feed(t *testing.T) {
	env := newSeededEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := env.Animals.AvailableAnimals().Subscribe(ctx)
	defer sub.Close()

	first := recv(t, sub.C)
	require.Len(t, first, 6)
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].Name, first[i].Name)
	}

	_, err := env.Animals.AdoptAnimal(ctx, findAnimal(first, "Nala").ID)
	require.NoError(t, err)

	next := recv(t, sub.C)
	assert.Len(t, next, 5)
	assert.Nil(t, findAnimal(next, "Nala"))
}
