package repository

import (
	"context"
	"fmt"
	"testing"

	"shipits/internal/database"
	"shipits/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory SQLite database migrated with the
// full schema. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@andrew.cmu.edu",
		Password: "hashed-password",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:       title,
		Description: "a test project",
		Status:      models.ProjectStatusActive,
		OwnerID:     ownerID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func reloadProject(t *testing.T, db *gorm.DB, id uint) *models.Project {
	t.Helper()
	var project models.Project
	require.NoError(t, db.First(&project, id).Error)
	return &project
}

func testCtx() context.Context {
	return context.Background()
}
