package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config
)

// @title Foodgram API
// @version 1.0
// @description Recipe publishing backend: recipes, favorites, shopping cart and author subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration = loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db = setupDatabase(configuration)

	images, err := storage.NewFileImageStore(configuration.MediaRoot)
	checkPanicErr(err)

	// Initialize services and controllers
	ledgers := services.NewLedgers(db)
	loader := services.NewCatalogLoader(db)
	userService := services.NewUserService(db, ledgers.Follows)
	oauthService := auth.NewOAuthService(db, configuration.JWTSecret,
		time.Duration(configuration.TokenTTLHours)*time.Hour)

	if configuration.SeedCatalog {
		seedCatalog(loader, configuration.DataDir)
	}
	purgeExpiredTokens(db)

	routes := controllers.Router{
		Catalog:   controllers.NewCatalogController(services.NewCatalogService(db)),
		Recipes:   controllers.NewRecipeController(services.NewRecipeService(db, images, ledgers), ledgers, services.NewShoppingListService(db)),
		Users:     controllers.NewUserController(userService),
		Auth:      controllers.NewAuthController(userService, oauthService),
		Clients:   controllers.NewClientController(services.NewClientService(db)),
		Admin:     controllers.NewAdminController(loader, configuration.DataDir),
		OAuth:     oauthService,
		JWTSecret: []byte(configuration.JWTSecret),
	}

	// Initialize Gin router
	router := setupRouter(routes)

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	checkPanicErr(router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes every package logger with the same level.
// LOG_LEVEL wins over the level implied by APP_ENV.
func setUpLogger(conf *config.Config) {
	level := config.LevelForEnvironment(conf.Environment)
	if conf.LogLevel != "" {
		parsed, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			log.WithError(err).Warnf("Unknown LOG_LEVEL %q, keeping %s", conf.LogLevel, level)
		} else {
			level = parsed
		}
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)
	services.SetLogLevel(level)
	auth.SetLogLevel(level)
	database.SetLogLevel(level)
	storage.SetLogLevel(level)

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects to the configured engine and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	conn, err := database.InitDatabase(database.FromConfig(conf))
	checkPanicErr(err)
	checkPanicErr(database.Migrate(conn))
	return conn
}

// seedCatalog loads the reference catalog only when it is empty.
// Missing files are logged, the server still starts.
func seedCatalog(loader services.CatalogLoader, dataDir string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	empty, err := loader.IsEmpty(ctx)
	checkPanicErr(err)
	if !empty {
		log.Info("Catalog already seeded")
		return
	}

	log.WithField("data_dir", dataDir).Info("Catalog is empty, seeding from data directory")
	result, err := loader.LoadFromDir(ctx, dataDir)
	if errors.Is(err, apperror.ErrSourceNotFound) {
		log.WithError(err).Warn("Catalog source missing, skipping seed")
		return
	}
	checkPanicErr(err)
	log.WithFields(log.Fields{
		"tags":        result.TagsCreated,
		"ingredients": result.IngredientsCreated,
	}).Info("Catalog seeded successfully")
}

// purgeExpiredTokens drops client tokens that can no longer be used
func purgeExpiredTokens(conn *gorm.DB) {
	removed, err := auth.NewGormTokenStore(conn).PurgeExpired(context.Background(), time.Now())
	if err != nil {
		log.WithError(err).Warn("Failed to purge expired tokens")
		return
	}
	log.WithField("removed", removed).Debug("Expired tokens purged")
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(routes controllers.Router) *gin.Engine {
	// Request binding shares the custom validation tags
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		checkPanicErr(validation.Register(engine))
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.StandardLogger()))
	router.Static("/media", configuration.MediaRoot)

	controllers.SetupRoutes(router, routes)
	return router
}
