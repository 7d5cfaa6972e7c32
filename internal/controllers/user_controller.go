package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles accounts and author subscriptions
type UserController interface {
	Register(c *gin.Context)
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	Me(c *gin.Context)
	SetPassword(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
	Subscriptions(c *gin.Context)
}

type userController struct {
	service services.UserService
}

// NewUserController creates a new instance of UserController
func NewUserController(service services.UserService) UserController {
	return &userController{service: service}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body registerRequest true "Account"
// @Success 201 {object} models.UserView
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/users [post]
func (uc *userController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := uc.service.CreateUser(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := uc.service.GetUserView(c.Request.Context(), user.ID, services.Anonymous())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.UserView
// @Router /api/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	users, err := uc.service.ListUsers(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserView
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := uc.service.GetUserView(c.Request.Context(), id, identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserView
// @Security BearerAuth
// @Router /api/users/me [get]
func (uc *userController) Me(c *gin.Context) {
	caller := identityFrom(c)
	view, err := uc.service.GetUserView(c.Request.Context(), caller.UserID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetPassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Param passwords body setPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (uc *userController) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := uc.service.ChangePassword(c.Request.Context(), identityFrom(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe godoc
// @Summary Subscribe to an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Maximum recipes returned for the author"
// @Success 201 {object} models.AuthorView
// @Failure 400 {object} models.APIError "Subscribing to yourself"
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (uc *userController) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "recipes_limit")
	if !ok {
		return
	}
	view, err := uc.service.Subscribe(c.Request.Context(), identityFrom(c), authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Unsubscribe godoc
// @Summary Unsubscribe from an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := uc.service.Unsubscribe(c.Request.Context(), identityFrom(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions godoc
// @Summary Followed authors with their recipes
// @Tags users
// @Produce json
// @Param recipes_limit query int false "Maximum recipes returned per author"
// @Success 200 {array} models.AuthorView
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (uc *userController) Subscriptions(c *gin.Context) {
	limit, ok := queryInt(c, "recipes_limit")
	if !ok {
		return
	}
	views, err := uc.service.Subscriptions(c.Request.Context(), identityFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
