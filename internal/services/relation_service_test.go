package services

import (
	"context"
	"sync"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLedger(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledgers := NewLedgers(db)
	recipes := NewRecipeService(db, setupImages(t), ledgers)

	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	flour := createIngredient(t, db, "flour", "g")
	first := createRecipe(t, recipes, author, "Bread", IngredientInput{ID: flour.ID, Amount: 500})
	second := createRecipe(t, recipes, author, "Cake", IngredientInput{ID: flour.ID, Amount: 200})

	fav, err := ledgers.Favorites.Add(ctx, reader.UserID, first.ID)
	require.NoError(t, err)
	assert.NotZero(t, fav.ID)
	assert.True(t, ledgers.Favorites.Exists(ctx, reader.UserID, first.ID))

	_, err = ledgers.Favorites.Add(ctx, reader.UserID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = ledgers.Favorites.Add(ctx, reader.UserID, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = ledgers.Favorites.Add(ctx, reader.UserID, second.ID)
	require.NoError(t, err)

	ids, err := ledgers.Favorites.TargetIDs(ctx, reader.UserID)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, ids)

	members, err := ledgers.Favorites.Members(ctx, reader.UserID, []uint{first.ID, second.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{first.ID: true, second.ID: true}, members)

	require.NoError(t, ledgers.Favorites.Remove(ctx, reader.UserID, first.ID))
	assert.False(t, ledgers.Favorites.Exists(ctx, reader.UserID, first.ID))

	err = ledgers.Favorites.Remove(ctx, reader.UserID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "favorite does not exist", err.Error())

	// carts are an independent relation over the same recipes
	assert.False(t, ledgers.Carts.Exists(ctx, reader.UserID, second.ID))
}

func TestCartLedgerIsPerUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledgers := NewLedgers(db)
	recipes := NewRecipeService(db, setupImages(t), ledgers)

	author := createUser(t, db, "author")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	salt := createIngredient(t, db, "salt", "g")
	soup := createRecipe(t, recipes, author, "Soup", IngredientInput{ID: salt.ID, Amount: 5})

	_, err := ledgers.Carts.Add(ctx, alice.UserID, soup.ID)
	require.NoError(t, err)
	_, err = ledgers.Carts.Add(ctx, bob.UserID, soup.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Cart{}).Where("recipe_id = ?", soup.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	assert.False(t, ledgers.Carts.Exists(ctx, Anonymous().UserID, soup.ID))
	members, err := ledgers.Carts.Members(ctx, Anonymous().UserID, []uint{soup.ID})
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestFollowLedger(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	follows := NewFollowLedger(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := follows.Add(ctx, alice.UserID, alice.UserID)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = follows.Add(ctx, alice.UserID, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	follow, err := follows.Add(ctx, alice.UserID, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, follow.AuthorID)

	_, err = follows.Add(ctx, alice.UserID, bob.UserID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// the reverse direction is a different pair
	_, err = follows.Add(ctx, bob.UserID, alice.UserID)
	assert.NoError(t, err)

	require.NoError(t, follows.Remove(ctx, alice.UserID, bob.UserID))
	assert.ErrorIs(t, follows.Remove(ctx, alice.UserID, bob.UserID), apperror.ErrNotFound)
}

func TestConcurrentAddKeepsPairUnique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	follows := NewFollowLedger(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := follows.Add(ctx, alice.UserID, bob.UserID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", alice.UserID, bob.UserID).Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
	assert.Equal(t, int(count), successes)
}
