package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

// NewDB returns a migrated sqlite database in the test's temp dir.
// The connection is closed when the test finishes.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "survey_test.db")
	db, err := models.InitialiseDatabase(path, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to initialise test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixture is a user assigned to a project plus an active question catalog.
type Fixture struct {
	User      models.User
	Project   models.Project
	Questions []models.Question
}

// NewFixture inserts a user, a project, their assignment and n questions ordered 1..n.
func NewFixture(t testing.TB, db *gorm.DB, userName, projectName string, n int) Fixture {
	t.Helper()
	ctx := context.Background()

	f := Fixture{
		User:    CreateUser(t, db, userName),
		Project: CreateProject(t, db, projectName),
	}
	if err := gorm.G[models.UserProject](db).Create(ctx, &models.UserProject{UserID: f.User.ID, ProjectID: f.Project.ID}); err != nil {
		t.Fatalf("failed to assign user: %v", err)
	}
	f.Questions = CreateQuestions(t, db, n)
	return f
}

func CreateUser(t testing.TB, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()), IsActive: true}
	if err := gorm.G[models.User](db).Create(context.Background(), &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func CreateProject(t testing.TB, db *gorm.DB, name string) models.Project {
	t.Helper()
	project := models.Project{Name: name, IsActive: true}
	if err := gorm.G[models.Project](db).Create(context.Background(), &project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

// CreateQuestions appends n questions after the highest existing order number.
func CreateQuestions(t testing.TB, db *gorm.DB, n int) []models.Question {
	t.Helper()
	ctx := context.Background()

	var maxOrder int
	if err := db.Model(&models.Question{}).Select("COALESCE(MAX(order_num), 0)").Scan(&maxOrder).Error; err != nil {
		t.Fatalf("failed to read question order: %v", err)
	}

	questions := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		q := models.Question{Text: fmt.Sprintf("Question %d", maxOrder+i), OrderNum: maxOrder + i, IsActive: true}
		if err := gorm.G[models.Question](db).Create(ctx, &q); err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
		questions = append(questions, q)
	}
	return questions
}
