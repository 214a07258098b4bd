package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/service"
)

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret1!x":    true,
		"Admin123!_":   true,
		"short1!A":     true,
		"Sh1!a":        false,
		"alllower1!":   false,
		"ALLUPPER1!":   false,
		"NoDigits!!":   false,
		"NoSymbol12":   false,
		"With Space1!": false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, strongPassword(pw), pw)
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	ok := productRequest{Name: "Correa", Description: "Correa retractil de cinco metros", Price: decimal.NewFromInt(4990), Category: "Accesorios"}
	require.NoError(t, v.Validate(&ok))

	bad := ok
	bad.Price = decimal.Zero
	bad.Category = "Ropa"
	err := v.Validate(&bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "price must be greater than 0")
	assert.Contains(t, err.Error(), "category is not a known category")

	old := animalRequest{Name: "Bobby", Species: "Perro", Breed: "Mestizo", Age: 31, Description: "Muy tranquilo y sociable"}
	assert.ErrorIs(t, v.Validate(&old), service.ErrValidation)

	nameless := profileRequest{Name: "   ", Email: "a@b.cl", Phone: "+56912345678"}
	assert.ErrorIs(t, v.Validate(&nameless), service.ErrValidation)
	named := profileRequest{Name: "José Núñez", Email: "a@b.cl", Phone: "+56912345678"}
	assert.NoError(t, v.Validate(&named))
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", service.ErrValidation), http.StatusBadRequest},
		{repo.ErrInvalidCredentials, http.StatusUnauthorized},
		{repo.ErrWrongPassword, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("animal 3: %w", repo.ErrNotFound), http.StatusNotFound},
		{repo.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("op: %w: %w", repo.ErrStore, errors.New("disk")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
