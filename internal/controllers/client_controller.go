package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ClientController lets a user manage machine clients acting on their behalf
type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

type createClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register a client for the client_credentials grant. Tokens it obtains act as the calling user.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body createClientRequest true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError "Invalid request"
// @Security BearerAuth
// @Router /api/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	issued, err := cc.clientService.CreateClient(c.Request.Context(), identityFrom(c), services.ClientInput{
		Name:   req.Name,
		Domain: req.Domain,
		Scopes: strings.Fields(req.Scopes),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     issued.Client.ID,
		"client_secret": issued.Secret, // Return plain secret only once
		"name":          issued.Client.Name,
		"domain":        issued.Client.Domain,
		"scopes":        issued.Client.Scopes,
		"grant_types":   issued.Client.GrantTypes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Security BearerAuth
// @Router /api/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), identityFrom(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
