package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db      *gorm.DB
	svc     RecipeService
	ledgers Ledgers
	media   string
	author  Identity
	other   Identity
	admin   Identity
	flour   models.Ingredient
	salt    models.Ingredient
	sugar   models.Ingredient
	lunch   models.Tag
	dinner  models.Tag
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	db := setupTestDB(t)
	media := t.TempDir()
	images, err := storage.NewFileImageStore(media)
	require.NoError(t, err)
	ledgers := NewLedgers(db)

	return &recipeFixture{
		db:      db,
		svc:     NewRecipeService(db, images, ledgers),
		ledgers: ledgers,
		media:   media,
		author:  createUser(t, db, "author"),
		other:   createUser(t, db, "other"),
		admin:   createAdmin(t, db, "admin"),
		flour:   createIngredient(t, db, "flour", "g"),
		salt:    createIngredient(t, db, "salt", "g"),
		sugar:   createIngredient(t, db, "sugar", "g"),
		lunch:   createTag(t, db, "Lunch", "#00FF00", "lunch"),
		dinner:  createTag(t, db, "Dinner", "#0000FF", "dinner"),
	}
}

func (f *recipeFixture) input(name string) RecipeInput {
	return RecipeInput{
		Name:        name,
		Text:        "Mix and bake",
		CookingTime: 45,
		Image:       pngImage,
		TagIDs:      []uint{f.lunch.ID},
		Ingredients: []IngredientInput{
			{ID: f.flour.ID, Amount: 500},
			{ID: f.salt.ID, Amount: 5},
		},
	}
}

func (f *recipeFixture) countRows(t *testing.T, model interface{}, recipeID uint) int64 {
	var count int64
	require.NoError(t, f.db.Model(model).Where("recipe_id = ?", recipeID).Count(&count).Error)
	return count
}

func (f *recipeFixture) imageExists(ref string) bool {
	_, err := os.Stat(filepath.Join(f.media, filepath.FromSlash(ref)))
	return err == nil
}

func ingredientSet(view models.RecipeView) map[uint]int {
	set := make(map[uint]int, len(view.Ingredients))
	for _, ing := range view.Ingredients {
		set[ing.ID] = ing.Amount
	}
	return set
}

func tagSet(view models.RecipeView) []uint {
	ids := make([]uint, 0, len(view.Tags))
	for _, tag := range view.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func TestCreateRecipeRoundTrip(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	in := f.input("Bread")
	in.TagIDs = []uint{f.dinner.ID, f.lunch.ID, f.dinner.ID}
	created, err := f.svc.CreateRecipe(ctx, f.author, in)
	require.NoError(t, err)

	got, err := f.svc.GetRecipe(ctx, created.ID, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "Bread", got.Name)
	assert.Equal(t, 45, got.CookingTime)
	assert.Equal(t, f.author.UserID, got.Author.ID)
	assert.ElementsMatch(t, []uint{f.lunch.ID, f.dinner.ID}, tagSet(got))
	assert.Equal(t, map[uint]int{f.flour.ID: 500, f.salt.ID: 5}, ingredientSet(got))
	assert.True(t, strings.HasPrefix(got.Image, "recipes/"))
	assert.True(t, f.imageExists(got.Image))
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInCart)

	for _, ing := range got.Ingredients {
		if ing.ID == f.flour.ID {
			assert.Equal(t, "flour", ing.Name)
			assert.Equal(t, "g", ing.MeasurementUnit)
		}
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(in *RecipeInput)
		wantField string
	}{
		{"cooking time below one", func(in *RecipeInput) { in.CookingTime = 0 }, "cooking_time"},
		{"amount below one", func(in *RecipeInput) { in.Ingredients[1].Amount = 0 }, "ingredients"},
		{"duplicate ingredient", func(in *RecipeInput) { in.Ingredients[1].ID = f.flour.ID }, "ingredients"},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"unknown ingredient", func(in *RecipeInput) { in.Ingredients[0].ID = 999 }, "ingredients"},
		{"unknown tag", func(in *RecipeInput) { in.TagIDs = []uint{f.lunch.ID, 999} }, "tags"},
		{"blank name", func(in *RecipeInput) { in.Name = "   " }, "name"},
		{"name too long", func(in *RecipeInput) { in.Name = strings.Repeat("a", MaxRecipeNameLength+1) }, "name"},
		{"blank text", func(in *RecipeInput) { in.Text = "" }, "text"},
		{"missing image", func(in *RecipeInput) { in.Image = nil }, "image"},
		{"not an image", func(in *RecipeInput) { in.Image = []byte("plain text, not a picture") }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("Bread")
			tt.mutate(&in)
			_, err := f.svc.CreateRecipe(ctx, f.author, in)
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantField, apperror.FieldOf(err))
		})
	}

	var count int64
	f.db.Model(&models.Recipe{}).Count(&count)
	assert.Zero(t, count, "rejected input must not write anything")

	entries, err := os.ReadDir(filepath.Join(f.media, "recipes"))
	require.NoError(t, err)
	assert.Empty(t, entries, "images of rejected recipes are discarded")
}

func TestCreateRecipeRequiresAuthentication(t *testing.T) {
	f := newRecipeFixture(t)
	_, err := f.svc.CreateRecipe(context.Background(), Anonymous(), f.input("Bread"))
	assert.ErrorIs(t, err, apperror.ErrPermission)
}

func TestRecipeNameUniquePerAuthor(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	_, err = f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.CreateRecipe(ctx, f.other, f.input("Bread"))
	assert.NoError(t, err)
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	in := f.input("Sweet bread")
	in.Image = nil
	in.TagIDs = []uint{f.dinner.ID}
	in.Ingredients = []IngredientInput{{ID: f.sugar.ID, Amount: 50}}
	updated, err := f.svc.UpdateRecipe(ctx, created.ID, f.author, in)
	require.NoError(t, err)

	assert.Equal(t, "Sweet bread", updated.Name)
	assert.Equal(t, created.Image, updated.Image, "an empty image keeps the stored one")
	assert.Equal(t, []uint{f.dinner.ID}, tagSet(updated))
	assert.Equal(t, map[uint]int{f.sugar.ID: 50}, ingredientSet(updated))
	assert.Equal(t, int64(1), f.countRows(t, &models.RecipeIngredient{}, created.ID))
	assert.Equal(t, int64(1), f.countRows(t, &models.RecipeTag{}, created.ID))
}

func TestUpdateRecipeWithSameIngredients(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	in := f.input("Bread")
	in.Image = nil
	updated, err := f.svc.UpdateRecipe(ctx, created.ID, f.author, in)
	require.NoError(t, err)

	assert.Equal(t, ingredientSet(created), ingredientSet(updated))
	assert.Equal(t, int64(2), f.countRows(t, &models.RecipeIngredient{}, created.ID))
}

func TestUpdateRecipeNewImageReplacesOld(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, created.ID, f.author, f.input("Bread"))
	require.NoError(t, err)
	assert.NotEqual(t, created.Image, updated.Image)
	assert.True(t, f.imageExists(updated.Image))
	assert.False(t, f.imageExists(created.Image))
}

func TestUpdateRecipePermissions(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	_, err = f.svc.UpdateRecipe(ctx, created.ID, f.other, f.input("Stolen"))
	assert.ErrorIs(t, err, apperror.ErrPermission)

	// permission is decided before the payload is looked at
	bad := f.input("Stolen")
	bad.CookingTime = 0
	_, err = f.svc.UpdateRecipe(ctx, created.ID, f.other, bad)
	assert.ErrorIs(t, err, apperror.ErrPermission)

	_, err = f.svc.UpdateRecipe(ctx, 999, f.author, f.input("Ghost"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	in := f.input("Moderated")
	in.Image = nil
	updated, err := f.svc.UpdateRecipe(ctx, created.ID, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Name)
	assert.Equal(t, f.author.UserID, updated.Author.ID, "admins edit without taking authorship")
}

func TestUpdateRecipeRejectsNameClash(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)
	cake, err := f.svc.CreateRecipe(ctx, f.author, f.input("Cake"))
	require.NoError(t, err)

	in := f.input("Bread")
	in.Ingredients = []IngredientInput{{ID: f.sugar.ID, Amount: 1}}
	_, err = f.svc.UpdateRecipe(ctx, cake.ID, f.author, in)
	require.ErrorIs(t, err, apperror.ErrConflict)

	// the failed update left the recipe untouched
	got, err := f.svc.GetRecipe(ctx, cake.ID, f.author)
	require.NoError(t, err)
	assert.Equal(t, "Cake", got.Name)
	assert.Equal(t, map[uint]int{f.flour.ID: 500, f.salt.ID: 5}, ingredientSet(got))
}

func TestDeleteRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)
	_, err = f.ledgers.Favorites.Add(ctx, f.other.UserID, created.ID)
	require.NoError(t, err)
	_, err = f.ledgers.Carts.Add(ctx, f.other.UserID, created.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, created.ID, f.other), apperror.ErrPermission)
	require.NoError(t, f.svc.DeleteRecipe(ctx, created.ID, f.author))

	_, err = f.svc.GetRecipe(ctx, created.ID, f.author)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	for _, model := range []interface{}{&models.Favorite{}, &models.Cart{}, &models.RecipeTag{}, &models.RecipeIngredient{}} {
		assert.Zero(t, f.countRows(t, model, created.ID))
	}
	assert.False(t, f.imageExists(created.Image))

	var tags int64
	f.db.Model(&models.Tag{}).Count(&tags)
	assert.Equal(t, int64(2), tags, "catalog rows survive recipe deletion")

	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, created.ID, f.author), apperror.ErrNotFound)
}

func TestRecipeViewFlags(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)
	_, err = f.ledgers.Favorites.Add(ctx, f.other.UserID, created.ID)
	require.NoError(t, err)
	_, err = f.ledgers.Follows.Add(ctx, f.other.UserID, f.author.UserID)
	require.NoError(t, err)

	asOther, err := f.svc.GetRecipe(ctx, created.ID, f.other)
	require.NoError(t, err)
	assert.True(t, asOther.IsFavorited)
	assert.False(t, asOther.IsInCart)
	assert.True(t, asOther.Author.IsSubscribed)

	asAnonymous, err := f.svc.GetRecipe(ctx, created.ID, Anonymous())
	require.NoError(t, err)
	assert.False(t, asAnonymous.IsFavorited)
	assert.False(t, asAnonymous.Author.IsSubscribed)
}

func TestListRecipesFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	bread, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)
	stewIn := f.input("Stew")
	stewIn.TagIDs = []uint{f.dinner.ID}
	stew, err := f.svc.CreateRecipe(ctx, f.other, stewIn)
	require.NoError(t, err)
	untaggedIn := f.input("Plain")
	untaggedIn.TagIDs = nil
	plain, err := f.svc.CreateRecipe(ctx, f.author, untaggedIn)
	require.NoError(t, err)

	_, err = f.ledgers.Favorites.Add(ctx, f.other.UserID, bread.ID)
	require.NoError(t, err)
	_, err = f.ledgers.Carts.Add(ctx, f.other.UserID, plain.ID)
	require.NoError(t, err)

	ids := func(views []models.RecipeView) []uint {
		out := make([]uint, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter RecipeFilter
		viewer Identity
		want   []uint
	}{
		{"everything newest first", RecipeFilter{}, Anonymous(), []uint{plain.ID, stew.ID, bread.ID}},
		{"by author", RecipeFilter{AuthorID: f.author.UserID}, Anonymous(), []uint{plain.ID, bread.ID}},
		{"by tag", RecipeFilter{TagSlugs: []string{"dinner"}}, Anonymous(), []uint{stew.ID}},
		{"any of several tags", RecipeFilter{TagSlugs: []string{"dinner", "lunch"}}, Anonymous(), []uint{stew.ID, bread.ID}},
		{"favorites of viewer", RecipeFilter{FavoritedOnly: true}, f.other, []uint{bread.ID}},
		{"cart of viewer", RecipeFilter{InCartOnly: true}, f.other, []uint{plain.ID}},
		{"favorites of anonymous is empty", RecipeFilter{FavoritedOnly: true}, Anonymous(), []uint{}},
		{"cart of anonymous is empty", RecipeFilter{InCartOnly: true}, Anonymous(), []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListRecipes(ctx, tt.filter, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestGetShortRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.author, f.input("Bread"))
	require.NoError(t, err)

	short, err := f.svc.GetShortRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShortRecipe{ID: created.ID, Name: "Bread", Image: created.Image, CookingTime: 45}, short)

	_, err = f.svc.GetShortRecipe(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
