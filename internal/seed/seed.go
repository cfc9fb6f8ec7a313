// Package seed populates the database with demo data for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"shipits/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumProjects int
	ShouldClean bool
	// SkipBcrypt stores a plaintext marker instead of hashing, for fast
	// local reseeds. Never use outside development.
	SkipBcrypt bool
}

var categoryNames = []string{
	"Web", "Mobile", "Hardware", "Games", "AI/ML",
	"Robotics", "Art & Design", "Research", "Social Good",
}

var projectAdjectives = []string{
	"Tiny", "Campus", "Open", "Smart", "Realtime", "Offline-first",
	"Peer-to-peer", "Minimal", "Ambient", "Collaborative",
}

var projectNouns = []string{
	"Scheduler", "Map", "Tracker", "Compiler", "Synth", "Planner",
	"Visualizer", "Assistant", "Marketplace", "Dashboard", "Garden",
}

var majors = []string{
	"Computer Science", "Electrical & Computer Engineering",
	"Information Systems", "Design", "Mechanical Engineering",
	"Statistics & Machine Learning", "Human-Computer Interaction",
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	log.Printf("Seeding %d users and %d projects...", opts.NumUsers, opts.NumProjects)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	categories, err := createOrGetCategories(db)
	if err != nil {
		return fmt.Errorf("failed to create categories: %w", err)
	}

	projects, err := createProjects(db, users, categories, opts.NumProjects)
	if err != nil {
		return fmt.Errorf("failed to create projects: %w", err)
	}
	log.Printf("created %d projects", len(projects))

	if err := createEngagement(db, users, projects); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	if err := createEvents(db, users, categories); err != nil {
		return fmt.Errorf("failed to create events: %w", err)
	}

	log.Println("Seeding complete. All demo users have the password: password123")
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []any{
		&models.Notification{}, &models.Reaction{}, &models.CommentRevision{},
		&models.Comment{}, &models.ProjectLike{}, &models.ProjectView{},
		&models.Subscription{}, &models.ThreadSummary{}, &models.EventRSVP{},
		&models.Event{}, &models.Project{}, &models.Category{}, &models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, opts Options) ([]models.User, error) {
	password := "password123"
	hashed := password
	if !opts.SkipBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed = string(b)
	}

	users := make([]models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		username := strings.ToLower(gofakeit.FirstName()) + fmt.Sprintf("%d", gofakeit.Number(10, 999))
		users = append(users, models.User{
			Username: username,
			Email:    username + "@andrew.cmu.edu",
			Password: hashed,
			Role:     models.RoleUser,
			Bio:      gofakeit.Sentence(12),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			Major:    majors[rand.Intn(len(majors))],
			GradYear: time.Now().Year() + rand.Intn(5),
		})
	}

	// One predictable admin account for local testing.
	users = append(users, models.User{
		Username: "admin",
		Email:    "admin@andrew.cmu.edu",
		Password: hashed,
		Role:     models.RoleAdmin,
		Bio:      "Keeps the lights on.",
	})

	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createOrGetCategories(db *gorm.DB) ([]models.Category, error) {
	for _, name := range categoryNames {
		category := models.Category{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			return nil, err
		}
	}
	var categories []models.Category
	err := db.Find(&categories).Error
	return categories, err
}

func createProjects(db *gorm.DB, users []models.User, categories []models.Category, n int) ([]models.Project, error) {
	projects := make([]models.Project, 0, n)
	for i := 0; i < n; i++ {
		owner := users[rand.Intn(len(users))]
		category := categories[rand.Intn(len(categories))]
		title := fmt.Sprintf("%s %s",
			projectAdjectives[rand.Intn(len(projectAdjectives))],
			projectNouns[rand.Intn(len(projectNouns))])

		project := models.Project{
			Title:       title,
			Description: gofakeit.Paragraph(2, 4, 8, "\n\n"),
			OwnerID:     owner.ID,
			CategoryID:  &category.ID,
			Status:      models.ProjectStatusActive,
			RepoURL:     fmt.Sprintf("https://github.com/%s/%s", owner.Username, strings.ToLower(strings.ReplaceAll(title, " ", "-"))),
			MediaURL:    fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
			Featured:    rand.Intn(10) == 0,
			CreatedAt:   spreadBack(90),
		}
		projects = append(projects, project)
	}
	if err := db.Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// createEngagement adds likes, views, subscriptions, and comment threads.
// Counters are written alongside the rows so the seeded data satisfies the
// same accounting the live write paths maintain.
func createEngagement(db *gorm.DB, users []models.User, projects []models.Project) error {
	for pi := range projects {
		project := &projects[pi]

		likers := pickUsers(users, rand.Intn(8))
		for _, u := range likers {
			if err := db.Create(&models.ProjectLike{UserID: u.ID, ProjectID: project.ID}).Error; err != nil {
				return err
			}
		}

		views := rand.Intn(40)
		for v := 0; v < views; v++ {
			view := models.ProjectView{ProjectID: project.ID, CreatedAt: spreadBack(14)}
			if u := users[rand.Intn(len(users))]; rand.Intn(2) == 0 {
				view.ViewerID = &u.ID
			}
			if err := db.Create(&view).Error; err != nil {
				return err
			}
		}

		for _, u := range pickUsers(users, rand.Intn(4)) {
			sub := models.Subscription{UserID: u.ID, ProjectID: project.ID, IsActive: true}
			if err := db.Create(&sub).Error; err != nil {
				return err
			}
		}

		comments, err := createThread(db, users, project)
		if err != nil {
			return err
		}

		err = db.Model(project).Updates(map[string]any{
			"analytics_likes":          len(likers),
			"analytics_views":          views,
			"analytics_total_comments": comments,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func createThread(db *gorm.DB, users []models.User, project *models.Project) (int, error) {
	total := 0
	topLevel := rand.Intn(5)
	for c := 0; c < topLevel; c++ {
		comment := models.Comment{
			Content:   gofakeit.Sentence(14),
			UserID:    users[rand.Intn(len(users))].ID,
			ProjectID: project.ID,
			CreatedAt: spreadBack(30),
		}
		if err := db.Create(&comment).Error; err != nil {
			return 0, err
		}
		total++

		replies := rand.Intn(3)
		for r := 0; r < replies; r++ {
			reply := models.Comment{
				Content:         gofakeit.Sentence(10),
				UserID:          users[rand.Intn(len(users))].ID,
				ProjectID:       project.ID,
				ParentCommentID: &comment.ID,
				CreatedAt:       comment.CreatedAt.Add(time.Duration(r+1) * time.Hour),
			}
			if err := db.Create(&reply).Error; err != nil {
				return 0, err
			}
			total++
		}
	}
	return total, nil
}

func createEvents(db *gorm.DB, users []models.User, categories []models.Category) error {
	eventTitles := []string{
		"Demo Day", "Hack Night", "Build Jam", "Show & Tell",
		"Founder Fireside", "Hardware Teardown",
	}
	for i, title := range eventTitles {
		creator := users[rand.Intn(len(users))]
		category := categories[rand.Intn(len(categories))]
		starts := time.Now().Add(time.Duration(i*3+1) * 24 * time.Hour)
		ends := starts.Add(2 * time.Hour)

		event := models.Event{
			Title:       title,
			Description: gofakeit.Sentence(18),
			Location:    fmt.Sprintf("Gates %d", 4000+rand.Intn(900)),
			StartsAt:    starts,
			EndsAt:      ends,
			CreatorID:   creator.ID,
			CategoryID:  &category.ID,
		}
		if err := db.Create(&event).Error; err != nil {
			return err
		}

		for _, u := range pickUsers(users, rand.Intn(6)) {
			rsvp := models.EventRSVP{EventID: event.ID, UserID: u.ID}
			if err := db.Create(&rsvp).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// pickUsers returns up to n distinct users.
func pickUsers(users []models.User, n int) []models.User {
	if n > len(users) {
		n = len(users)
	}
	picked := make([]models.User, 0, n)
	for _, i := range rand.Perm(len(users))[:n] {
		picked = append(picked, users[i])
	}
	return picked
}

func spreadBack(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 30
	}
	return time.Now().
		Add(-time.Duration(rand.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(rand.Intn(60)) * time.Minute)
}
