package auth

import (
	"time"

	"github.com/go-oauth2/oauth2/v4"
	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the auth logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// OAuthService issues bearer JWTs to users (password login) and to their
// machine clients (client_credentials). Both kinds carry the same uid/role claims.
type OAuthService struct {
	server    *server.Server
	db        *gorm.DB
	generator *CustomJWTAccessGenerate
	tokenTTL  time.Duration
}

func NewOAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})

	generator := NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS512, db)
	manager.MapAccessGenerate(generator)

	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetInternalErrorHandler(func(err error) *oauthErrors.Response {
		log.WithError(err).Error("OAuth internal error")
		return nil
	})

	return &OAuthService{
		server:    srv,
		db:        db,
		generator: generator,
		tokenTTL:  tokenTTL,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// TokenTTL is the lifetime of every access token issued by the service
func (o *OAuthService) TokenTTL() time.Duration {
	return o.tokenTTL
}
