//go:build ignore

// Creates the first admin account.
//
//	go run scripts/create_admin.go -email admin@zippty.com -name "Store Admin"
//
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/config"
	"github.com/boostmysites25/zippty-backend/internal/db"
	"github.com/boostmysites25/zippty-backend/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		log.Printf("Warning: .env.local not found: %v", err)
	}

	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Admin", "admin display name")
	flag.Parse()

	normalized := auth.NormalizeEmail(*email)
	if normalized == "" {
		log.Fatal("-email is required")
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if err := auth.ValidatePassword(password); err != nil {
		log.Fatalf("ADMIN_PASSWORD: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI not set")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "zippty"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, database, err := db.Open(ctx, db.Options{URI: mongoURI, Database: dbName})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	store := repository.NewStore(database, nil)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	hash, err := auth.HashPassword(password, config.DefaultConfig().Auth.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin, err := store.CreateAdmin(ctx, repository.Admin{Name: *name, Email: normalized, Password: hash})
	if errors.Is(err, repository.ErrDuplicate) {
		log.Fatalf("An admin with email %s already exists", normalized)
	}
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("Created admin %s (%s)", admin.Email, admin.ID.Hex())
}
