package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const clientSecretBytes = 32

// ClientInput describes a machine client to register
type ClientInput struct {
	Name   string `validate:"required,max=100"`
	Domain string `validate:"omitempty,url"`
	Scopes []string
}

// IssuedClient is a freshly created client together with its plain secret.
// The secret is only ever available at creation time.
type IssuedClient struct {
	Client models.OAuthClient
	Secret string
}

type ClientService interface {
	CreateClient(ctx context.Context, owner Identity, in ClientInput) (*IssuedClient, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, owner Identity, in ClientInput) (*IssuedClient, error) {
	if !owner.Authenticated() {
		return nil, apperror.Forbidden("authentication is required to register clients")
	}
	in.Name = strings.TrimSpace(in.Name)
	if field, err := validation.Struct(in); err != nil {
		return nil, apperror.ValidationFailed(field, err.Error())
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	client := models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hash),
		Name:       in.Name,
		Domain:     in.Domain,
		UserID:     owner.UserID,
		Scopes:     strings.Join(in.Scopes, " "),
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   owner.UserID,
	}).Info("OAuth client created")
	return &IssuedClient{Client: client, Secret: secret}, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFoundOr(err, "client", id)
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("client", clientID)
	}
	log.WithField("client_id", clientID).Info("OAuth client deleted")
	return nil
}

func generateSecret() (string, error) {
	buf := make([]byte, clientSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
