package services

import (
	"context"
	"unicode/utf8"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// CatalogService exposes the read-only tag and ingredient reference data
type CatalogService interface {
	// ListTags returns every tag ordered by id
	ListTags(ctx context.Context) ([]models.Tag, error)
	// GetTag returns a single tag
	GetTag(ctx context.Context, id uint) (models.Tag, error)
	// ListIngredients returns ingredients ordered by name, restricted to names
	// starting with prefix (case-sensitive) when prefix is not empty
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	// GetIngredient returns a single ingredient
	GetIngredient(ctx context.Context, id uint) (models.Ingredient, error)
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *catalogService) GetTag(ctx context.Context, id uint) (models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return models.Tag{}, notFoundOr(err, "tag", id)
	}
	return tag, nil
}

func (s *catalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		// LIKE is case-insensitive on sqlite, substr compares exactly on both engines
		query = query.Where("substr(name, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
	}

	ingredients := []models.Ingredient{}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return models.Ingredient{}, notFoundOr(err, "ingredient", id)
	}
	return ingredient, nil
}
