package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves the read-only tag and ingredient reference data
type CatalogController interface {
	// ListTags returns every tag
	ListTags(c *gin.Context)
	// GetTag returns a tag by id
	GetTag(c *gin.Context)
	// ListIngredients returns ingredients, optionally filtered by name prefix
	ListIngredients(c *gin.Context)
	// GetIngredient returns an ingredient by id
	GetIngredient(c *gin.Context)
}

type catalogController struct {
	service services.CatalogService
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(service services.CatalogService) CatalogController {
	return &catalogController{service: service}
}

// ListTags godoc
// @Summary List tags
// @Description Get every tag ordered by id
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Tag
// @Failure 500 {object} models.APIError
// @Router /api/tags [get]
func (cc *catalogController) ListTags(c *gin.Context) {
	tags, err := cc.service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/tags/{id} [get]
func (cc *catalogController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tag, err := cc.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// ListIngredients godoc
// @Summary List ingredients
// @Description Get ingredients ordered by name. The name filter is a case-sensitive prefix match.
// @Tags catalog
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Failure 500 {object} models.APIError
// @Router /api/ingredients [get]
func (cc *catalogController) ListIngredients(c *gin.Context) {
	ingredients, err := cc.service.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (cc *catalogController) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredient, err := cc.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
