package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router groups everything SetupRoutes needs
type Router struct {
	Catalog   CatalogController
	Recipes   RecipeController
	Users     UserController
	Auth      *AuthController
	Clients   *ClientController
	Admin     *AdminController
	OAuth     *auth.OAuthService
	JWTSecret []byte
}

// SetupRoutes defines the routes for the Gin router
func SetupRoutes(router *gin.Engine, r Router) {
	required := middleware.OAuth2Auth(r.JWTSecret)
	optional := middleware.OptionalAuth(r.JWTSecret)

	router.GET("/health", healthCheckHandler)
	router.POST("/oauth/token", r.OAuth.HandleToken)

	api := router.Group("/api")
	{
		authApi := api.Group("/auth/token")
		{
			authApi.POST("/login", r.Auth.Login)
			authApi.POST("/logout", required, r.Auth.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("", r.Users.Register)
			users.GET("", optional, r.Users.ListUsers)
			users.GET("/me", required, r.Users.Me)
			users.POST("/set_password", required, r.Users.SetPassword)
			users.GET("/subscriptions", required, r.Users.Subscriptions)
			users.GET("/:id", optional, r.Users.GetUser)
			users.POST("/:id/subscribe", required, r.Users.Subscribe)
			users.DELETE("/:id/subscribe", required, r.Users.Unsubscribe)
		}

		api.GET("/tags", r.Catalog.ListTags)
		api.GET("/tags/:id", r.Catalog.GetTag)
		api.GET("/ingredients", r.Catalog.ListIngredients)
		api.GET("/ingredients/:id", r.Catalog.GetIngredient)

		recipes := api.Group("/recipes")
		{
			recipes.GET("", optional, r.Recipes.ListRecipes)
			recipes.GET("/download_shopping_cart", required, r.Recipes.DownloadShoppingList)
			recipes.GET("/:id", optional, r.Recipes.GetRecipe)
			recipes.POST("", required, r.Recipes.CreateRecipe)
			recipes.PATCH("/:id", required, r.Recipes.UpdateRecipe)
			recipes.DELETE("/:id", required, r.Recipes.DeleteRecipe)
			recipes.POST("/:id/favorite", required, r.Recipes.AddFavorite)
			recipes.DELETE("/:id/favorite", required, r.Recipes.RemoveFavorite)
			recipes.POST("/:id/shopping_cart", required, r.Recipes.AddToCart)
			recipes.DELETE("/:id/shopping_cart", required, r.Recipes.RemoveFromCart)
		}

		clients := api.Group("/clients", required)
		{
			clients.POST("", r.Clients.CreateClient)
			clients.GET("", r.Clients.ListClients)
			clients.DELETE("/:id", r.Clients.DeleteClient)
		}

		admin := api.Group("/admin", required, middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/catalog/import", r.Admin.ImportCatalog)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "foodgram-api",
	})
}
