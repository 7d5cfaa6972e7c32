package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Creates (or reuses) a user with the requested role and registers a
// client_credentials client for it. Prints the one-time secret.
func main() {
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	password := flag.String("password", "dev-password-123", "Password used when the user has to be created")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unknown role %q", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	db, err := database.InitDatabase(database.FromConfig(conf))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	ctx := context.Background()
	user := getUserForRole(ctx, db, *role, *password)

	issued, err := services.NewClientService(db).CreateClient(ctx,
		services.Identity{UserID: user.ID, Role: user.Role},
		services.ClientInput{Name: fmt.Sprintf("Development %s client", *role), Scopes: []string{"read", "write"}})
	if err != nil {
		log.Fatal("Failed to create client: ", err)
	}

	fmt.Printf("Development OAuth client created for role '%s'\n", *role)
	fmt.Printf("Client ID: %s\n", issued.Client.ID)
	fmt.Printf("Client Secret: %s\n", issued.Secret)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:%d/oauth/token \\\n", conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", issued.Client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", issued.Secret)
}

// getUserForRole finds the dev user for role, creating it and fixing its role as needed
func getUserForRole(ctx context.Context, db *gorm.DB, role, password string) *models.User {
	email := fmt.Sprintf("%s@foodgram.local", role)

	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, err := services.NewUserService(db, services.NewFollowLedger(db)).CreateUser(ctx, services.RegisterInput{
			Username:  "dev_" + role,
			Email:     email,
			FirstName: "Development",
			LastName:  role,
			Password:  password,
		})
		if err != nil && !errors.Is(err, apperror.ErrConflict) {
			log.Fatal("Failed to create user: ", err)
		}
		if created == nil {
			log.Fatalf("User dev_%s exists with another email", role)
		}
		user = *created
		log.WithFields(log.Fields{"user_id": user.ID, "email": email}).Info("Created development user")
	} else if err != nil {
		log.Fatal("Failed to look up user: ", err)
	}

	if user.Role != role {
		if err := db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
			log.Fatal("Failed to set role: ", err)
		}
	}
	return &user
}
