package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxRecipeNameLength = 200

// IngredientInput is one requested (ingredient, amount) pair
type IngredientInput struct {
	ID     uint
	Amount int
}

// RecipeInput carries every writable recipe field. Updates replace all of them.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	// Image holds decoded image bytes. On update an empty image keeps the stored one.
	Image       []byte
	TagIDs      []uint
	Ingredients []IngredientInput
}

// RecipeFilter narrows ListRecipes. Zero values mean no restriction.
type RecipeFilter struct {
	AuthorID      uint
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
}

// RecipeService owns recipes together with their tag and ingredient associations
type RecipeService interface {
	// CreateRecipe publishes a recipe authored by the caller
	CreateRecipe(ctx context.Context, author Identity, in RecipeInput) (models.RecipeView, error)
	// UpdateRecipe replaces every field and association of a recipe
	UpdateRecipe(ctx context.Context, recipeID uint, requester Identity, in RecipeInput) (models.RecipeView, error)
	// DeleteRecipe removes a recipe with its associations, favorites and cart entries
	DeleteRecipe(ctx context.Context, recipeID uint, requester Identity) error
	// GetRecipe returns a recipe as seen by viewer
	GetRecipe(ctx context.Context, recipeID uint, viewer Identity) (models.RecipeView, error)
	// ListRecipes returns recipes newest first
	ListRecipes(ctx context.Context, filter RecipeFilter, viewer Identity) ([]models.RecipeView, error)
	// GetShortRecipe returns the compact form used by favorite and cart responses
	GetShortRecipe(ctx context.Context, recipeID uint) (models.ShortRecipe, error)
}

type recipeService struct {
	db      *gorm.DB
	images  storage.ImageStore
	ledgers Ledgers
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB, images storage.ImageStore, ledgers Ledgers) RecipeService {
	return &recipeService{db: db, images: images, ledgers: ledgers}
}

func (s *recipeService) CreateRecipe(ctx context.Context, author Identity, in RecipeInput) (models.RecipeView, error) {
	if !author.Authenticated() {
		return models.RecipeView{}, apperror.Forbidden("authentication is required to publish recipes")
	}
	in = normalizeRecipeInput(in)
	if err := validateRecipeInput(in, true); err != nil {
		return models.RecipeView{}, err
	}

	image, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return models.RecipeView{}, err
	}

	recipe := models.Recipe{
		AuthorID:    author.UserID,
		Name:        in.Name,
		Image:       image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tagIDs, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := resolveIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := ensureUniqueName(tx, author.UserID, in.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return translateRecipeWrite(err)
		}
		return writeAssociations(tx, recipe.ID, tagIDs, in.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return models.RecipeView{}, err
	}

	log.WithFields(logrus.Fields{
		"recipe_id":   recipe.ID,
		"author_id":   author.UserID,
		"tags":        len(in.TagIDs),
		"ingredients": len(in.Ingredients),
	}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID, author)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID uint, requester Identity, in RecipeInput) (models.RecipeView, error) {
	current, err := s.loadForWrite(s.db.WithContext(ctx), recipeID, requester)
	if err != nil {
		return models.RecipeView{}, err
	}
	in = normalizeRecipeInput(in)
	if err := validateRecipeInput(in, false); err != nil {
		return models.RecipeView{}, err
	}

	var image string
	if len(in.Image) > 0 {
		if image, err = s.saveImage(ctx, in.Image); err != nil {
			return models.RecipeView{}, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadForWrite(tx, recipeID, requester)
		if err != nil {
			return err
		}
		tagIDs, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := resolveIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := ensureUniqueName(tx, recipe.AuthorID, in.Name, recipe.ID); err != nil {
			return err
		}

		// associations are replaced wholesale, never diffed
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if image != "" {
			updates["image"] = image
		}
		if err := tx.Model(&recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return translateRecipeWrite(err)
		}
		return writeAssociations(tx, recipe.ID, tagIDs, in.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return models.RecipeView{}, err
	}
	if image != "" {
		s.discardImage(ctx, current.Image)
	}

	log.WithFields(logrus.Fields{
		"recipe_id":   recipeID,
		"user_id":     requester.UserID,
		"tags":        len(in.TagIDs),
		"ingredients": len(in.Ingredients),
	}).Info("Recipe updated")
	return s.GetRecipe(ctx, recipeID, requester)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID uint, requester Identity) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.loadForWrite(tx, recipeID, requester)
		if err != nil {
			return err
		}
		image = recipe.Image

		// explicit cleanup so the result does not depend on engine level cascades
		for _, dependent := range []interface{}{
			&models.Favorite{}, &models.Cart{}, &models.RecipeTag{}, &models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Recipe{}, recipeID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("recipe", recipeID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, image)
	log.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"user_id":   requester.UserID,
	}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID uint, viewer Identity) (models.RecipeView, error) {
	var recipe models.Recipe
	if err := s.withAssociations(ctx).First(&recipe, recipeID).Error; err != nil {
		return models.RecipeView{}, notFoundOr(err, "recipe", recipeID)
	}

	views, err := s.buildViews(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return models.RecipeView{}, err
	}
	return views[0], nil
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, viewer Identity) ([]models.RecipeView, error) {
	if (filter.FavoritedOnly || filter.InCartOnly) && !viewer.Authenticated() {
		return []models.RecipeView{}, nil
	}

	db := s.db.WithContext(ctx)
	query := s.withAssociations(ctx).Order("recipes.id DESC")
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedOnly {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer.UserID))
	}
	if filter.InCartOnly {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Cart{}).Select("recipe_id").Where("user_id = ?", viewer.UserID))
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.buildViews(ctx, recipes, viewer)
}

func (s *recipeService) GetShortRecipe(ctx context.Context, recipeID uint) (models.ShortRecipe, error) {
	var short models.ShortRecipe
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Take(&short).Error
	if err != nil {
		return models.ShortRecipe{}, notFoundOr(err, "recipe", recipeID)
	}
	return short, nil
}

// withAssociations preloads everything a RecipeView needs in a stable order
func (s *recipeService) withAssociations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *recipeService) buildViews(ctx context.Context, recipes []models.Recipe, viewer Identity) ([]models.RecipeView, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.ledgers.Favorites.Members(ctx, viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.ledgers.Carts.Members(ctx, viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := s.ledgers.Follows.Members(ctx, viewer.UserID, uniqueIDs(authorIDs))
	if err != nil {
		return nil, err
	}

	views := make([]models.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		view := models.RecipeView{
			ID:          r.ID,
			Author:      toUserView(r.Author, followed[r.AuthorID]),
			Name:        r.Name,
			Image:       r.Image,
			Text:        r.Text,
			CookingTime: r.CookingTime,
			Tags:        append([]models.Tag{}, r.Tags...),
			Ingredients: make([]models.IngredientAmount, 0, len(r.Ingredients)),
			IsFavorited: favorited[r.ID],
			IsInCart:    inCart[r.ID],
		}
		for _, ri := range r.Ingredients {
			view.Ingredients = append(view.Ingredients, models.IngredientAmount{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// loadForWrite fetches the recipe and checks that requester may modify it
func (s *recipeService) loadForWrite(db *gorm.DB, recipeID uint, requester Identity) (models.Recipe, error) {
	if !requester.Authenticated() {
		return models.Recipe{}, apperror.Forbidden("authentication is required to modify recipes")
	}
	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return models.Recipe{}, notFoundOr(err, "recipe", recipeID)
	}
	if recipe.AuthorID != requester.UserID && !requester.IsAdmin() {
		return models.Recipe{}, apperror.Forbidden("only the author or an administrator can modify this recipe")
	}
	return recipe, nil
}

func (s *recipeService) saveImage(ctx context.Context, data []byte) (string, error) {
	ref, err := s.images.Save(ctx, data)
	if errors.Is(err, storage.ErrNotImage) {
		return "", apperror.ValidationFailed("image", err.Error())
	}
	return ref, err
}

func (s *recipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		log.WithError(err).WithField("image", ref).Warn("Failed to remove recipe image")
	}
}

func normalizeRecipeInput(in RecipeInput) RecipeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)
	in.TagIDs = uniqueIDs(in.TagIDs)
	return in
}

func validateRecipeInput(in RecipeInput, requireImage bool) error {
	if in.Name == "" {
		return apperror.ValidationFailed("name", "recipe name is required")
	}
	if utf8.RuneCountInString(in.Name) > MaxRecipeNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("recipe name must be %d characters or less", MaxRecipeNameLength))
	}
	if in.Text == "" {
		return apperror.ValidationFailed("text", "recipe text is required")
	}
	if in.CookingTime < 1 {
		return apperror.ValidationFailed("cooking_time", "cooking time must be at least 1 minute")
	}
	if requireImage && len(in.Image) == 0 {
		return apperror.ValidationFailed("image", "recipe image is required")
	}
	if len(in.Ingredients) == 0 {
		return apperror.ValidationFailed("ingredients", "a recipe needs at least one ingredient")
	}

	seen := make(map[uint]struct{}, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		if ing.Amount < 1 {
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("amount of ingredient %d must be at least 1", ing.ID))
		}
		if _, dup := seen[ing.ID]; dup {
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("ingredient %d is listed more than once", ing.ID))
		}
		seen[ing.ID] = struct{}{}
	}
	return nil
}

// resolveTags checks that every tag exists and returns the ids in request order
func resolveTags(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	if missing, ok := firstMissing(ids, found); ok {
		return nil, apperror.ValidationFailed("tags", fmt.Sprintf("tag %d does not exist", missing))
	}
	return ids, nil
}

func resolveIngredients(tx *gorm.DB, items []IngredientInput) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if missing, ok := firstMissing(ids, found); ok {
		return apperror.ValidationFailed("ingredients", fmt.Sprintf("ingredient %d does not exist", missing))
	}
	return nil
}

func firstMissing(wanted, found []uint) (uint, bool) {
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

// ensureUniqueName rejects a second recipe with the same name by the same author.
// exceptID excludes the recipe being updated.
func ensureUniqueName(tx *gorm.DB, authorID uint, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("recipe", fmt.Sprintf("named %q already exists for this author", name))
	}
	return nil
}

func writeAssociations(tx *gorm.DB, recipeID uint, tagIDs []uint, items []IngredientInput) error {
	if len(tagIDs) > 0 {
		links := make([]models.RecipeTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: id})
		}
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return err
		}
	}

	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.ValidationFailed("ingredients", "an ingredient is listed more than once")
		}
		return err
	}
	return nil
}

func translateRecipeWrite(err error) error {
	if isUniqueViolation(err) {
		return apperror.Conflict("recipe", "with this name already exists for this author")
	}
	return err
}

func toUserView(u models.User, subscribed bool) models.UserView {
	return models.UserView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}
