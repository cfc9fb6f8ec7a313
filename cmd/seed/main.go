// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"shipits/internal/config"
	"shipits/internal/database"
	"shipits/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numProjects := flag.Int("projects", 60, "Number of projects to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d projects, clean=%v", *numUsers, *numProjects, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumProjects: *numProjects,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
