package main

import (
	"log"

	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	result, err := database.SeedDemo(db)
	if err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	if result.UserCreated {
		log.Printf("Created demo user %q (password %q)", database.DemoUsername, database.DemoPassword)
	} else {
		log.Printf("Demo user %q already exists", database.DemoUsername)
	}
	if result.ProjectCreated {
		log.Printf("Created project %q", database.DemoProjectName)
	}
	log.Printf("Created %d demo tasks", result.TasksCreated)
}
