package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
	"github.com/caretrack/caretrack/internal/service/logger"
	"github.com/caretrack/caretrack/internal/service/password"
	"github.com/caretrack/caretrack/internal/usecase"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	store, err := persistence.Open(ctx, cfg.Database.Driver, cfg.DSN(), appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	username := "admin"
	userPassword := "admin123!"
	email := "admin@caretrack.local"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		userPassword = os.Args[2]
	}
	if len(os.Args) > 3 {
		email = os.Args[3]
	}

	users := usecase.NewUserManager(store, password.NewBcryptHasher(10), appLogger)

	actor := "system"
	admin, err := users.Create(ctx, usecase.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: userPassword,
		Role:     domain.UserRoleAdmin,
	}, &actor)
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully\n")
	fmt.Printf("Username: %s\n", admin.Username)
	fmt.Printf("Email:    %s\n", admin.Email)
	fmt.Printf("ID:       %s\n", admin.ID)
}
