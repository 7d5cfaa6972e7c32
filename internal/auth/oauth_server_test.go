package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{})
	require.NoError(t, err)

	return db
}

// createOwnedClient stores a user with role and a client owned by that user
func createOwnedClient(t *testing.T, db *gorm.DB, role, clientID, secret string) *models.User {
	user := &models.User{
		Username: "owner_" + clientID,
		Email:    clientID + "@example.com",
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	require.NoError(t, err)
	client := &models.OAuthClient{
		ID:         clientID,
		Secret:     string(hashedSecret),
		Domain:     "http://localhost",
		Scopes:     "read write",
		UserID:     user.ID,
		GrantTypes: "client_credentials",
	}
	require.NoError(t, db.Create(client).Error)
	return user
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testSecret, time.Hour)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
	assert.Equal(t, time.Hour, oauthService.TokenTTL())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	owner := createOwnedClient(t, db, models.RoleAdmin, "test_client", "test_secret")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials,
		&oauth2.TokenGenerateRequest{
			ClientID:     "test_client",
			ClientSecret: "test_secret",
			Scope:        "read",
		})
	require.NoError(t, err)
	require.NotNil(t, tokenInfo)

	claims := parseClaims(t, tokenInfo.GetAccess())
	assert.Equal(t, "test_client", claims["aud"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.EqualValues(t, owner.ID, mustAtoi(t, claims["uid"]))
	assert.Equal(t, "read", claims["scope"])

	var stored int64
	db.Model(&models.OAuthToken{}).Where("access_token = ?", tokenInfo.GetAccess()).Count(&stored)
	assert.Equal(t, int64(1), stored)
}

func TestJWTTokenGenerationWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, time.Hour)
	createOwnedClient(t, db, models.RoleUser, "test_client", "test_secret")

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials,
		&oauth2.TokenGenerateRequest{ClientID: "test_client", ClientSecret: "nope"})
	assert.Error(t, err)
}

func TestIssueUserToken(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret, 2*time.Hour)
	user := &models.User{ID: 42, Role: models.RoleUser}

	token, expiresAt, err := oauthService.IssueUserToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims := parseClaims(t, token)
	assert.Equal(t, "42", claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.NotContains(t, claims, "aud")
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createOwnedClient(t, db, models.RoleUser, "integration_test_client", "integration_test_secret")

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	assert.NotEmpty(t, retrievedClient.GetUserID())

	verifier, ok := retrievedClient.(oauth2.ClientPasswordVerifier)
	require.True(t, ok)
	assert.True(t, verifier.VerifyPassword("integration_test_secret"))
	assert.False(t, verifier.VerifyPassword("integration_test_secret2"))

	_, err = clientStore.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, oauthErrors.ErrInvalidClient)
}

func TestTokenStorePurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	now := time.Now()

	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "old", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "fresh", ExpiresAt: now.Add(time.Hour)}).Error)

	removed, err := store.PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	info, err := store.GetByAccess(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "", info.GetUserID())

	_, err = store.GetByCode(context.Background(), "any")
	assert.Error(t, err)
}

func mustAtoi(t *testing.T, v interface{}) uint64 {
	s, ok := v.(string)
	require.True(t, ok, "uid claim must be a string")
	n, err := strconv.ParseUint(s, 10, 64)
	require.NoError(t, err)
	return n
}
