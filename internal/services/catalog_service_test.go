package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredientNames(ingredients []models.Ingredient) []string {
	names := make([]string, 0, len(ingredients))
	for _, i := range ingredients {
		names = append(names, i.Name)
	}
	return names
}

func TestListIngredientsPrefix(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	createIngredient(t, db, "sugar", "g")
	createIngredient(t, db, "Salt", "g")
	createIngredient(t, db, "salmon", "g")
	createIngredient(t, db, "flour", "g")
	createIngredient(t, db, "молоко", "ml")

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"no filter lists everything by name", "", []string{"Salt", "flour", "salmon", "sugar", "молоко"}},
		{"prefix is case-sensitive", "s", []string{"salmon", "sugar"}},
		{"upper case prefix", "Sa", []string{"Salt"}},
		{"multi byte prefix", "мол", []string{"молоко"}},
		{"no match", "x", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListIngredients(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ingredientNames(got))
		})
	}
}

func TestListAndGetTags(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	lunch := createTag(t, db, "Lunch", "#00FF00", "lunch")
	breakfast := createTag(t, db, "Breakfast", "#FF0000", "breakfast")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, lunch.ID, tags[0].ID)
	assert.Equal(t, breakfast.ID, tags[1].ID)

	got, err := svc.GetTag(ctx, breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", got.Slug)

	_, err = svc.GetTag(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetIngredient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	flour := createIngredient(t, db, "flour", "g")

	got, err := svc.GetIngredient(context.Background(), flour.ID)
	require.NoError(t, err)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = svc.GetIngredient(context.Background(), flour.ID+1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
