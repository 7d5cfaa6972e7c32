package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// reservedUsernames collide with routes under /api/users
var reservedUsernames = map[string]struct{}{
	"me":            {},
	"subscriptions": {},
}

// RegisterInput is the data required to create an account
type RegisterInput struct {
	Username  string `validate:"required,max=150,username"`
	Email     string `validate:"required,max=254,email"`
	FirstName string `validate:"required,max=150"`
	LastName  string `validate:"required,max=150"`
	Password  string `validate:"required,min=8,max=128"`
}

type UserService interface {
	CreateUser(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// GetUserView returns the user with is_subscribed computed for viewer
	GetUserView(ctx context.Context, id uint, viewer Identity) (models.UserView, error)
	ListUsers(ctx context.Context, viewer Identity) ([]models.UserView, error)
	// Subscribe follows author and returns it with up to recipesLimit recipes (0 means all)
	Subscribe(ctx context.Context, viewer Identity, authorID uint, recipesLimit int) (models.AuthorView, error)
	Unsubscribe(ctx context.Context, viewer Identity, authorID uint) error
	// Subscriptions lists followed authors, most recently followed first
	Subscriptions(ctx context.Context, viewer Identity, recipesLimit int) ([]models.AuthorView, error)
}

type userService struct {
	db      *gorm.DB
	follows RelationLedger[models.Follow]
}

func NewUserService(db *gorm.DB, follows RelationLedger[models.Follow]) UserService {
	return &userService{db: db, follows: follows}
}

func (s *userService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if field, err := validation.Struct(in); err != nil {
		return nil, apperror.ValidationFailed(field, err.Error())
	}
	if _, reserved := reservedUsernames[strings.ToLower(in.Username)]; reserved {
		return nil, apperror.ValidationFailed("username", "username "+in.Username+" is reserved")
	}

	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
		Role:      models.RoleUser,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("user", "with this email already exists")
		}
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("user", "with this username already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("user", "with this email or username already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		log.WithField("user_id", user.ID).Warn("Login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return apperror.ValidationFailed("current_password", "current password is wrong")
	}
	if len(next) < 8 {
		return apperror.ValidationFailed("new_password", "new password must be at least 8 characters")
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &user, nil
}

func (s *userService) GetUserView(ctx context.Context, id uint, viewer Identity) (models.UserView, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.UserView{}, err
	}
	return toUserView(*user, s.follows.Exists(ctx, viewer.UserID, user.ID)), nil
}

func (s *userService) ListUsers(ctx context.Context, viewer Identity) ([]models.UserView, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed, err := s.follows.Members(ctx, viewer.UserID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u, followed[u.ID]))
	}
	return views, nil
}

func (s *userService) Subscribe(ctx context.Context, viewer Identity, authorID uint, recipesLimit int) (models.AuthorView, error) {
	if !viewer.Authenticated() {
		return models.AuthorView{}, apperror.Forbidden("authentication is required to subscribe")
	}
	if _, err := s.follows.Add(ctx, viewer.UserID, authorID); err != nil {
		return models.AuthorView{}, err
	}
	author, err := s.GetUserByID(ctx, authorID)
	if err != nil {
		return models.AuthorView{}, err
	}
	return s.authorView(ctx, *author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, viewer Identity, authorID uint) error {
	if !viewer.Authenticated() {
		return apperror.Forbidden("authentication is required to unsubscribe")
	}
	return s.follows.Remove(ctx, viewer.UserID, authorID)
}

func (s *userService) Subscriptions(ctx context.Context, viewer Identity, recipesLimit int) ([]models.AuthorView, error) {
	if !viewer.Authenticated() {
		return []models.AuthorView{}, nil
	}
	authorIDs, err := s.follows.TargetIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return []models.AuthorView{}, nil
	}

	var authors []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}

	views := make([]models.AuthorView, 0, len(authorIDs))
	for _, id := range authorIDs {
		author, ok := byID[id]
		if !ok {
			continue
		}
		view, err := s.authorView(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// authorView renders a followed author, so is_subscribed is always true
func (s *userService) authorView(ctx context.Context, author models.User, recipesLimit int) (models.AuthorView, error) {
	db := s.db.WithContext(ctx)
	view := models.AuthorView{
		UserView: toUserView(author, true),
		Recipes:  []models.ShortRecipe{},
	}
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&view.RecipesCount).Error; err != nil {
		return models.AuthorView{}, err
	}

	query := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Order("id DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	if err := query.Find(&view.Recipes).Error; err != nil {
		return models.AuthorView{}, err
	}
	return view, nil
}
