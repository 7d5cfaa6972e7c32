package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes and the
// per-user favorite and shopping cart relations
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToCart(c *gin.Context)
	RemoveFromCart(c *gin.Context)
	// DownloadShoppingList exports the aggregated cart as a text file
	DownloadShoppingList(c *gin.Context)
}

type recipeController struct {
	recipes  services.RecipeService
	ledgers  services.Ledgers
	shopping services.ShoppingListService
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(recipes services.RecipeService, ledgers services.Ledgers, shopping services.ShoppingListService) RecipeController {
	return &recipeController{recipes: recipes, ledgers: ledgers, shopping: shopping}
}

type ingredientAmountRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update.
// Image is base64, optionally as a data URL (data:image/png;base64,...).
type RecipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Tags        []uint                    `json:"tags"`
	Ingredients []ingredientAmountRequest `json:"ingredients"`
}

func (r RecipeRequest) toInput() (services.RecipeInput, error) {
	image, err := decodeImage(r.Image)
	if err != nil {
		return services.RecipeInput{}, err
	}
	in := services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       image,
		TagIDs:      r.Tags,
		Ingredients: make([]services.IngredientInput, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, services.IngredientInput{ID: ing.ID, Amount: ing.Amount})
	}
	return in, nil
}

func decodeImage(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "data:") {
		comma := strings.Index(raw, ",")
		if comma < 0 || !strings.HasSuffix(raw[:comma], ";base64") {
			return nil, apperror.ValidationFailed("image", "image must be a base64 data URL")
		}
		raw = raw[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, apperror.ValidationFailed("image", "image is not valid base64")
	}
	return data, nil
}

// ListRecipes godoc
// @Summary List recipes
// @Description Recipes newest first. Favorite and cart filters return nothing for anonymous callers.
// @Tags recipes
// @Produce json
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs, any of" collectionFormat(multi)
// @Param is_favorited query int false "1 to list only favorites"
// @Param is_in_shopping_cart query int false "1 to list only recipes in the cart"
// @Success 200 {array} models.RecipeView
// @Failure 400 {object} models.APIError
// @Router /api/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	filter := services.RecipeFilter{
		TagSlugs:      c.QueryArray("tags"),
		FavoritedOnly: queryFlag(c, "is_favorited"),
		InCartOnly:    queryFlag(c, "is_in_shopping_cart"),
	}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			badRequest(c, "invalid author format")
			return
		}
		filter.AuthorID = uint(id)
	}

	recipes, err := rc.recipes.ListRecipes(c.Request.Context(), filter, identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := rc.recipes.GetRecipe(c.Request.Context(), id, identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description Publish a recipe authored by the caller
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body RecipeRequest true "Recipe"
// @Success 201 {object} models.RecipeView
// @Failure 400 {object} models.APIError
// @Failure 401 {object} map[string]string
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Replace every field, tag and ingredient of a recipe. An empty image keeps the current one.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body RecipeRequest true "Recipe"
// @Success 200 {object} models.RecipeView
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), id, identityFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.recipes.DeleteRecipe(c.Request.Context(), id, identityFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.ShortRecipe
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.addRelation(c, func(userID, recipeID uint) error {
		_, err := rc.ledgers.Favorites.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.removeRelation(c, func(userID, recipeID uint) error {
		return rc.ledgers.Favorites.Remove(c.Request.Context(), userID, recipeID)
	})
}

// AddToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.ShortRecipe
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToCart(c *gin.Context) {
	rc.addRelation(c, func(userID, recipeID uint) error {
		_, err := rc.ledgers.Carts.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

// RemoveFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromCart(c *gin.Context) {
	rc.removeRelation(c, func(userID, recipeID uint) error {
		return rc.ledgers.Carts.Remove(c.Request.Context(), userID, recipeID)
	})
}

// DownloadShoppingList godoc
// @Summary Download the shopping list
// @Description Sum the ingredients of every recipe in the caller's cart
// @Tags recipes
// @Produce plain
// @Success 200 {string} string "shopping_list.txt"
// @Failure 400 {object} models.APIError "Cart is empty"
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingList(c *gin.Context) {
	rows, err := rc.shopping.AggregateShoppingList(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", services.RenderShoppingList(rows))
}

func (rc *recipeController) addRelation(c *gin.Context, add func(userID, recipeID uint) error) {
	recipeID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := add(identityFrom(c).UserID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	short, err := rc.recipes.GetShortRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (rc *recipeController) removeRelation(c *gin.Context, remove func(userID, recipeID uint) error) {
	recipeID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := remove(identityFrom(c).UserID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
