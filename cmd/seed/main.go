// Command main runs the database seeder for Mosaic.
package main

import (
	"flag"
	"log"

	"mosaic/internal/config"
	"mosaic/internal/database"
	"mosaic/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "Path to a YAML fixtures file with deterministic demo accounts")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if err := s.Seed(seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if *fixtures != "" {
		f, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Fixtures load failed: %v", err)
		}
		if err := s.ApplyFixtures(f); err != nil {
			log.Fatalf("Fixtures apply failed: %v", err)
		}
		log.Printf("Applied fixtures: %d accounts", len(f.Users))
	}
}
