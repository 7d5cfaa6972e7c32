package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService  services.UserService
	oauthService *auth.OAuthService
}

func NewAuthController(userService services.UserService, oauthService *auth.OAuthService) *AuthController {
	return &AuthController{
		userService:  userService,
		oauthService: oauthService,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Obtain a token with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, err.Error()))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := ac.oauthService.IssueUserToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(time.Until(expiresAt).Seconds()),
		"user":         models.UserView{ID: user.ID, Username: user.Username, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName},
	})
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless JWTs, the client discards its token
// @Tags auth
// @Success 204
// @Security BearerAuth
// @Router /api/auth/token/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
