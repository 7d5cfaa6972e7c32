// Command importcsv loads the tag and ingredient catalog from CSV files.
//
//	importcsv -dir data
//	importcsv -ingredients data/ingredients.csv -tags data/tags.csv
//
// Rows already stored are skipped, so running it twice is harmless.
// A missing source file aborts the import before anything is written.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	log.SetFormatter(&log.JSONFormatter{})

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	dir := flag.String("dir", conf.DataDir, "Directory holding tags.csv and ingredients.csv")
	ingredientsPath := flag.String("ingredients", "", "Ingredient CSV (name,measurement_unit), overrides -dir")
	tagsPath := flag.String("tags", "", "Tag CSV (name,color,slug), overrides -dir")
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort the import after this long")
	flag.Parse()

	if *ingredientsPath == "" {
		*ingredientsPath = filepath.Join(*dir, services.IngredientsFile)
	}
	if *tagsPath == "" {
		*tagsPath = filepath.Join(*dir, services.TagsFile)
	}

	// Both sources are parsed before connecting, a missing file writes nothing
	ingredients, err := services.ReadIngredientRows(*ingredientsPath)
	if err != nil {
		fail(err)
	}
	tags, err := services.ReadTagRows(*tagsPath)
	if err != nil {
		fail(err)
	}

	db, err := database.InitDatabase(database.FromConfig(conf))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := services.NewCatalogLoader(db).LoadCatalog(ctx, tags, ingredients)
	if err != nil {
		fail(err)
	}
	log.WithFields(log.Fields{
		"ingredients_created":  result.IngredientsCreated,
		"ingredients_existing": result.IngredientsExisting,
		"tags_created":         result.TagsCreated,
		"tags_existing":        result.TagsExisting,
	}).Info("Catalog import finished")
}

func fail(err error) {
	log.WithError(err).Error("Catalog import failed")
	os.Exit(1)
}
