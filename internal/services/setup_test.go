package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	authorID   = "author-1"
	author2ID  = "author-2"
	reviewerID = "reviewer-1"
	adminID    = "admin-1"
	outsiderID = "outsider-1"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DB: config.DBConfig{
			Type:               "sqlite-pure",
			Database:           ":memory:",
			AppConnectionLimit: 1,
			LogLevel:           "silent",
		},
	}
	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// setupEngine creates an engine over a fresh database with the standard users
func setupEngine(t *testing.T, opts ...services.Option) (*services.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	opts = append([]services.Option{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	engine := services.NewEngine(db, zap.NewNop(), opts...)
	seedUsers(t, engine)
	return engine, db
}

func seedUsers(t *testing.T, engine *services.Engine) {
	t.Helper()
	users := []struct {
		id    string
		roles []models.Role
	}{
		{authorID, []models.Role{models.RoleAuthor}},
		{author2ID, []models.Role{models.RoleAuthor}},
		{reviewerID, []models.Role{models.RoleReviewer}},
		{adminID, []models.Role{models.RoleAdmin}},
		{outsiderID, nil},
	}
	for _, u := range users {
		_, err := engine.RegisterUser(context.Background(), models.User{
			UserID:      u.id,
			Email:       u.id + "@example.org",
			DisplayName: u.id,
		}, u.roles, "")
		if err != nil {
			t.Fatalf("Failed to register %s: %v", u.id, err)
		}
	}
}

// submittedPaper creates a paper with count versions
func submittedPaper(t *testing.T, engine *services.Engine, title string, count int) *models.Paper {
	t.Helper()
	ctx := context.Background()
	paper, err := engine.CreatePaper(ctx, authorID)
	if err != nil {
		t.Fatalf("Failed to create paper: %v", err)
	}
	for i := 0; i < count; i++ {
		if _, err := engine.SubmitPaperVersion(ctx, paper.PaperID, title, "abstract of "+title, "s3://papers/"+title, authorID); err != nil {
			t.Fatalf("Failed to submit version %d: %v", i+1, err)
		}
	}
	return paper
}

func loadPaper(t *testing.T, db *gorm.DB, paperID uint64) models.Paper {
	t.Helper()
	var paper models.Paper
	if err := db.Where("paper_id = ?", paperID).First(&paper).Error; err != nil {
		t.Fatalf("Failed to load paper %d: %v", paperID, err)
	}
	return paper
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	query := db.Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func assertKind(t *testing.T, err error, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("Expected %v, got %v", want, err)
	}
	var we *types.WorkflowError
	if !errors.As(err, &we) || we.Message == "" {
		t.Errorf("Expected a workflow error with a message, got %#v", err)
	}
}
