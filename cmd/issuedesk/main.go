package main

import (
	"fmt"
	"log"
	"os"

	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/auth"
	"github.com/issuedesk-dev/issuedesk/internal/identity"
	"github.com/issuedesk-dev/issuedesk/internal/router"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if len(os.Args) > 1 {
		runCommand(os.Args[1], os.Args[2:])
		return
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runCommand(command string, args []string) {
	switch command {
	case "createsuperuser":
		if len(args) != 2 {
			log.Fatal("Usage: issuedesk createsuperuser <email> <password>")
		}

		user, err := identity.CreateSuperuser(args[0], args[1])

		if err != nil {
			log.Fatalf("Failed to create superuser: %v", err)
		}

		fmt.Printf("Superuser %s created (id %d)\n", user.Email, user.ID)
	default:
		log.Fatalf("Unknown command %q", command)
	}
}
