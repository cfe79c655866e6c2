package seed

import (
	"fmt"
	"os"

	"mosaic/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Fixtures describes deterministic demo data loaded from a YAML file.
// Unlike the random mesh, fixtures give every environment the same
// well-known accounts and content.
type Fixtures struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is one deterministic demo account with its content and the
// usernames it follows.
type FixtureUser struct {
	Username string        `yaml:"username"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Bio      string        `yaml:"bio"`
	Follows  []string      `yaml:"follows"`
	Posts    []FixturePost `yaml:"posts"`
}

// FixturePost is one deterministic post.
type FixturePost struct {
	Caption  string `yaml:"caption"`
	ImageURL string `yaml:"image_url"`
}

// LoadFixtures parses a fixtures YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// ApplyFixtures upserts the fixture accounts and their content. Existing
// accounts with the same username are left untouched.
func (s *Seeder) ApplyFixtures(f *Fixtures) error {
	byUsername := make(map[string]*models.User, len(f.Users))

	for _, fu := range f.Users {
		var existing models.User
		err := s.db.Where("username = ?", fu.Username).First(&existing).Error
		if err == nil {
			byUsername[fu.Username] = &existing
			continue
		}

		password := fu.Password
		if password == "" {
			password = "Password123!"
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &models.User{
			Username: fu.Username,
			Email:    fu.Email,
			Password: string(hashed),
			Bio:      fu.Bio,
		}
		if err := s.db.Create(user).Error; err != nil {
			return fmt.Errorf("create fixture user %q: %w", fu.Username, err)
		}
		byUsername[fu.Username] = user

		for _, fp := range fu.Posts {
			post := &models.Post{
				Caption:  fp.Caption,
				ImageURL: fp.ImageURL,
				UserID:   user.ID,
			}
			if err := s.db.Create(post).Error; err != nil {
				return fmt.Errorf("create fixture post for %q: %w", fu.Username, err)
			}
		}
	}

	// Second pass: follow edges, now that every account exists.
	for _, fu := range f.Users {
		follower := byUsername[fu.Username]
		for _, target := range fu.Follows {
			followee, ok := byUsername[target]
			if !ok || followee.ID == follower.ID {
				continue
			}
			edge := models.Follow{FollowerID: follower.ID, FollowingID: followee.ID}
			if err := s.db.Create(&edge).Error; err != nil {
				// Edge may already exist from a previous run.
				continue
			}
		}
	}
	return nil
}
