// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"mosaic/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder builds demo entities and persists them to the database.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	follows, err := s.createFollowMesh(users)
	if err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}
	log.Printf("%d follow edges created", follows)

	likes, comments, err := s.createEngagement(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Printf("%d likes and %d comments created", likes, comments)

	log.Println("Database seeding completed")
	return nil
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE deletion_tombstones, comments, likes, follows, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Bio:       gofakeit.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Password:  string(hashedPassword),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user.
func (s *Seeder) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Caption:  gofakeit.Sentence(8),
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		UserID:   user.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := s.r.Intn(90)
	hoursBack := s.r.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		user := users[s.r.Intn(len(users))]
		post, err := s.CreatePost(user)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createFollowMesh wires each user to a handful of random others. Edges
// are directed; mutual follows happen naturally when both directions land.
func (s *Seeder) createFollowMesh(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	created := 0
	for _, user := range users {
		n := 1 + s.r.Intn(min(8, len(users)-1))
		for i := 0; i < n; i++ {
			target := users[s.r.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			edge := models.Follow{FollowerID: user.ID, FollowingID: target.ID}
			err := s.db.Create(&edge).Error
			if err != nil {
				// Duplicate edges are expected with random targets.
				continue
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) createEngagement(users []*models.User, posts []*models.Post) (int, int, error) {
	if len(users) == 0 || len(posts) == 0 {
		return 0, 0, nil
	}
	likes, comments := 0, 0
	for _, post := range posts {
		for i := 0; i < s.r.Intn(6); i++ {
			user := users[s.r.Intn(len(users))]
			like := models.Like{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err == nil {
				likes++
			}
		}
		for i := 0; i < s.r.Intn(4); i++ {
			user := users[s.r.Intn(len(users))]
			comment := models.Comment{
				Content: gofakeit.Sentence(12),
				UserID:  user.ID,
				PostID:  post.ID,
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
