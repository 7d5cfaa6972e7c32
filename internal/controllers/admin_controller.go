package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	loader  services.CatalogLoader
	dataDir string
}

func NewAdminController(loader services.CatalogLoader, dataDir string) *AdminController {
	return &AdminController{loader: loader, dataDir: dataDir}
}

// ImportCatalog godoc
// @Summary Import the tag and ingredient catalog
// @Description Load tags.csv and ingredients.csv from the configured data directory. Rows already stored are skipped.
// @Tags admin
// @Produce json
// @Success 200 {object} services.LoadResult
// @Failure 404 {object} models.APIError "Source file missing"
// @Failure 409 {object} models.APIError "Tag clashes with a stored one"
// @Security BearerAuth
// @Router /api/admin/catalog/import [post]
func (ac *AdminController) ImportCatalog(c *gin.Context) {
	result, err := ac.loader.LoadFromDir(c.Request.Context(), ac.dataDir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags_created":         result.TagsCreated,
		"tags_existing":        result.TagsExisting,
		"ingredients_created":  result.IngredientsCreated,
		"ingredients_existing": result.IngredientsExisting,
	})
}
