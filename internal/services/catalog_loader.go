package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	TagsFile        = "tags.csv"
	IngredientsFile = "ingredients.csv"

	loadBatchSize = 500
)

// TagRow is one line of the tag source: name,color,slug
type TagRow struct {
	Name  string `validate:"required,max=16"`
	Color string `validate:"required,tagcolor"`
	Slug  string `validate:"required,max=50,slug"`
}

// IngredientRow is one line of the ingredient source: name,measurement_unit
type IngredientRow struct {
	Name            string `validate:"required,max=100"`
	MeasurementUnit string `validate:"required,max=200"`
}

// LoadResult counts what a catalog load inserted and what it found already present
type LoadResult struct {
	TagsCreated         int
	TagsExisting        int
	IngredientsCreated  int
	IngredientsExisting int
}

// CatalogLoader imports reference tags and ingredients. Loading is idempotent.
type CatalogLoader interface {
	// LoadCatalog inserts the rows that are not stored yet, in one transaction
	LoadCatalog(ctx context.Context, tags []TagRow, ingredients []IngredientRow) (LoadResult, error)
	// LoadFromDir reads tags.csv and ingredients.csv from dir and loads them.
	// Both files are parsed before anything is written.
	LoadFromDir(ctx context.Context, dir string) (LoadResult, error)
	// IsEmpty reports whether neither tags nor ingredients are stored
	IsEmpty(ctx context.Context) (bool, error)
}

type catalogLoader struct {
	db *gorm.DB
}

// NewCatalogLoader creates a new instance of CatalogLoader
func NewCatalogLoader(db *gorm.DB) CatalogLoader {
	return &catalogLoader{db: db}
}

// ReadTagRows parses a headerless name,color,slug CSV file
func ReadTagRows(path string) ([]TagRow, error) {
	records, err := readRecords(path, 3)
	if err != nil {
		return nil, err
	}
	rows := make([]TagRow, 0, len(records))
	for i, rec := range records {
		row := TagRow{Name: rec[0], Color: rec[1], Slug: rec[2]}
		if field, err := validation.Struct(row); err != nil {
			return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s line %d: %v", path, i+1, err))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadIngredientRows parses a headerless name,measurement_unit CSV file
func ReadIngredientRows(path string) ([]IngredientRow, error) {
	records, err := readRecords(path, 2)
	if err != nil {
		return nil, err
	}
	rows := make([]IngredientRow, 0, len(records))
	for i, rec := range records {
		row := IngredientRow{Name: rec[0], MeasurementUnit: rec[1]}
		if field, err := validation.Struct(row); err != nil {
			return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s line %d: %v", path, i+1, err))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readRecords(path string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.SourceNotFound(path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columns
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.ValidationFailed(filepath.Base(path), fmt.Sprintf("parsing %s: %v", path, err))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *catalogLoader) LoadFromDir(ctx context.Context, dir string) (LoadResult, error) {
	ingredients, err := ReadIngredientRows(filepath.Join(dir, IngredientsFile))
	if err != nil {
		return LoadResult{}, err
	}
	tags, err := ReadTagRows(filepath.Join(dir, TagsFile))
	if err != nil {
		return LoadResult{}, err
	}
	return l.LoadCatalog(ctx, tags, ingredients)
}

func (l *catalogLoader) LoadCatalog(ctx context.Context, tags []TagRow, ingredients []IngredientRow) (LoadResult, error) {
	var result LoadResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if result.IngredientsCreated, result.IngredientsExisting, err = loadIngredients(tx, ingredients); err != nil {
			return err
		}
		result.TagsCreated, result.TagsExisting, err = loadTags(tx, tags)
		return err
	})
	if err != nil {
		return LoadResult{}, err
	}

	log.WithFields(logrus.Fields{
		"tags_created":         result.TagsCreated,
		"tags_existing":        result.TagsExisting,
		"ingredients_created":  result.IngredientsCreated,
		"ingredients_existing": result.IngredientsExisting,
	}).Info("Catalog loaded")
	return result, nil
}

func (l *catalogLoader) IsEmpty(ctx context.Context) (bool, error) {
	db := l.db.WithContext(ctx)
	var tags, ingredients int64
	if err := db.Model(&models.Tag{}).Count(&tags).Error; err != nil {
		return false, err
	}
	if err := db.Model(&models.Ingredient{}).Count(&ingredients).Error; err != nil {
		return false, err
	}
	return tags == 0 && ingredients == 0, nil
}

type ingredientKey struct {
	name, unit string
}

// loadIngredients is get-or-create keyed on (name, measurement_unit)
func loadIngredients(tx *gorm.DB, rows []IngredientRow) (created, existing int, err error) {
	var stored []models.Ingredient
	if err := tx.Select("name", "measurement_unit").Find(&stored).Error; err != nil {
		return 0, 0, err
	}
	seen := make(map[ingredientKey]struct{}, len(stored)+len(rows))
	for _, ing := range stored {
		seen[ingredientKey{ing.Name, ing.MeasurementUnit}] = struct{}{}
	}

	pending := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		key := ingredientKey{row.Name, row.MeasurementUnit}
		if _, ok := seen[key]; ok {
			existing++
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit})
	}
	if len(pending) > 0 {
		if err := tx.CreateInBatches(&pending, loadBatchSize).Error; err != nil {
			return 0, 0, err
		}
	}
	return len(pending), existing, nil
}

// loadTags is get-or-create keyed on the full (name, color, slug) triple.
// A row sharing only some of those values with a stored tag cannot be stored
// because each column is unique on its own.
func loadTags(tx *gorm.DB, rows []TagRow) (created, existing int, err error) {
	var stored []models.Tag
	if err := tx.Find(&stored).Error; err != nil {
		return 0, 0, err
	}
	triples := make(map[TagRow]struct{}, len(stored)+len(rows))
	names := make(map[string]struct{}, len(stored)+len(rows))
	colors := make(map[string]struct{}, len(stored)+len(rows))
	slugs := make(map[string]struct{}, len(stored)+len(rows))
	remember := func(r TagRow) {
		triples[r] = struct{}{}
		names[r.Name] = struct{}{}
		colors[strings.ToLower(r.Color)] = struct{}{}
		slugs[r.Slug] = struct{}{}
	}
	for _, tag := range stored {
		remember(TagRow{Name: tag.Name, Color: tag.Color, Slug: tag.Slug})
	}

	pending := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		if _, ok := triples[row]; ok {
			existing++
			continue
		}
		if _, ok := names[row.Name]; ok {
			return 0, 0, apperror.Conflict("tag", fmt.Sprintf("name %q is already used with a different color or slug", row.Name))
		}
		if _, ok := colors[strings.ToLower(row.Color)]; ok {
			return 0, 0, apperror.Conflict("tag", fmt.Sprintf("color %q is already used by another tag", row.Color))
		}
		if _, ok := slugs[row.Slug]; ok {
			return 0, 0, apperror.Conflict("tag", fmt.Sprintf("slug %q is already used by another tag", row.Slug))
		}
		remember(row)
		pending = append(pending, models.Tag{Name: row.Name, Color: row.Color, Slug: row.Slug})
	}
	if len(pending) > 0 {
		if err := tx.CreateInBatches(&pending, loadBatchSize).Error; err != nil {
			if isUniqueViolation(err) {
				return 0, 0, apperror.Conflict("tag", "clashes with a stored tag")
			}
			return 0, 0, err
		}
	}
	return len(pending), existing, nil
}
