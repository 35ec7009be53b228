package db_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
	"github.com/CLDWare/csi-survey-backend/pkg/testhelpers"
)

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	require.NoError(t, models.Migrate(path, zap.NewNop()))
	require.NoError(t, models.Migrate(path, zap.NewNop()))

	db, err := models.InitialiseDatabase(path, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("survey_responses"))
	assert.True(t, db.Migrator().HasTable("survey_sessions"))
}

func TestSchema_CompletionColumnsSetTogether(t *testing.T) {
	db := testhelpers.NewDB(t)
	f := testhelpers.NewFixture(t, db, "alice", "Apollo", 1)

	now := time.Now().UTC()
	err := db.Exec("INSERT INTO survey_sessions (user_id, project_id, completed_at, created_at) VALUES (?, ?, ?, ?)",
		f.User.ID, f.Project.ID, now, now).Error
	assert.Error(t, err, "completed_at without total_score must be rejected")

	err = db.Exec("INSERT INTO survey_sessions (user_id, project_id, total_score, created_at) VALUES (?, ?, ?, ?)",
		f.User.ID, f.Project.ID, 4.5, now).Error
	assert.Error(t, err, "total_score without completed_at must be rejected")
}

func TestSchema_RatingRange(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()
	f := testhelpers.NewFixture(t, db, "alice", "Apollo", 1)

	session := models.SurveySession{UserID: f.User.ID, ProjectID: f.Project.ID}
	require.NoError(t, store.CreateSession(ctx, &session))

	err := db.Exec("INSERT INTO survey_responses (session_id, question_id, rating, created_at) VALUES (?, ?, ?, ?)",
		session.ID, f.Questions[0].ID, 6, time.Now()).Error
	assert.Error(t, err)
}

func TestStore_GetSessionNotFound(t *testing.T) {
	store := models.NewStore(testhelpers.NewDB(t))

	_, err := store.GetSession(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_CompleteSessionOnlyOnce(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()
	f := testhelpers.NewFixture(t, db, "alice", "Apollo", 1)

	session := models.SurveySession{UserID: f.User.ID, ProjectID: f.Project.ID}
	require.NoError(t, store.CreateSession(ctx, &session))

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated, err := store.CompleteSession(ctx, session.ID, 4.25, first)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = store.CompleteSession(ctx, session.ID, 2.0, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, stored.Completed())
	assert.Equal(t, 4.25, *stored.TotalScore)
	assert.True(t, first.Equal(*stored.CompletedAt))
}

func TestStore_UpsertResponseReplacesAnswer(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()
	f := testhelpers.NewFixture(t, db, "alice", "Apollo", 2)

	session := models.SurveySession{UserID: f.User.ID, ProjectID: f.Project.ID}
	require.NoError(t, store.CreateSession(ctx, &session))

	comment := "first"
	first := models.SurveyResponse{SessionID: session.ID, QuestionID: f.Questions[0].ID, Rating: 2, Comment: &comment}
	require.NoError(t, store.UpsertResponse(ctx, &first))

	retry := models.SurveyResponse{SessionID: session.ID, QuestionID: f.Questions[0].ID, Rating: 5}
	require.NoError(t, store.UpsertResponse(ctx, &retry))
	assert.Equal(t, first.ID, retry.ID)
	assert.Equal(t, 5, retry.Rating)
	assert.Nil(t, retry.Comment)

	n, err := store.CountResponses(ctx, session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStore_ConcurrentResponsesForOneSession(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()
	f := testhelpers.NewFixture(t, db, "alice", "Apollo", 8)

	session := models.SurveySession{UserID: f.User.ID, ProjectID: f.Project.ID}
	require.NoError(t, store.CreateSession(ctx, &session))

	var wg sync.WaitGroup
	errs := make(chan error, len(f.Questions))
	for i, q := range f.Questions {
		wg.Add(1)
		go func(questionID uint, rating int) {
			defer wg.Done()
			errs <- store.UpsertResponse(ctx, &models.SurveyResponse{SessionID: session.ID, QuestionID: questionID, Rating: rating})
		}(q.ID, i%5+1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ratings, err := store.ListRatings(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, len(f.Questions))
}

func TestStore_ListResultRowsOrdering(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()

	questions := testhelpers.CreateQuestions(t, db, 2)
	bob := testhelpers.CreateUser(t, db, "bob")
	alice := testhelpers.CreateUser(t, db, "alice")
	project := testhelpers.CreateProject(t, db, "Apollo")

	complete := func(user models.User, at time.Time, ratings ...int) {
		session := models.SurveySession{UserID: user.ID, ProjectID: project.ID}
		require.NoError(t, store.CreateSession(ctx, &session))
		// answer in reverse order so the query has to sort by question order
		for i := len(ratings) - 1; i >= 0; i-- {
			require.NoError(t, store.UpsertResponse(ctx, &models.SurveyResponse{SessionID: session.ID, QuestionID: questions[i].ID, Rating: ratings[i]}))
		}
		_, err := store.CompleteSession(ctx, session.ID, 3, at)
		require.NoError(t, err)
	}

	older := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	complete(alice, older, 3, 3)
	complete(bob, newer, 4, 2)
	complete(alice, newer, 5, 1)

	// an open session must not show up
	open := models.SurveySession{UserID: bob.ID, ProjectID: project.ID}
	require.NoError(t, store.CreateSession(ctx, &open))
	require.NoError(t, store.UpsertResponse(ctx, &models.SurveyResponse{SessionID: open.ID, QuestionID: questions[0].ID, Rating: 1}))

	rows, err := store.ListResultRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	type key struct {
		user  string
		order int
	}
	got := make([]key, 0, len(rows))
	for _, r := range rows {
		got = append(got, key{r.UserName, r.QuestionOrder})
		require.NotNil(t, r.CompletedAt)
		require.NotNil(t, r.TotalScore)
	}
	q1, q2 := questions[0].OrderNum, questions[1].OrderNum
	assert.Equal(t, []key{
		{"alice", q1}, {"alice", q2},
		{"bob", q1}, {"bob", q2},
		{"alice", q1}, {"alice", q2},
	}, got)
	assert.True(t, newer.Equal(*rows[0].CompletedAt))
	assert.True(t, older.Equal(*rows[5].CompletedAt))

	userRows, err := store.ListUserResultRows(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, userRows, 2)
}

func TestStore_UserProjects(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, "alice")
	zeta := testhelpers.CreateProject(t, db, "Zeta")
	alpha := testhelpers.CreateProject(t, db, "Alpha")

	require.NoError(t, store.AssignUserToProject(ctx, user.ID, zeta.ID))
	require.NoError(t, store.AssignUserToProject(ctx, user.ID, alpha.ID))
	require.NoError(t, store.AssignUserToProject(ctx, user.ID, alpha.ID), "duplicate assignment is ignored")

	projects, err := store.ListUserProjects(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Zeta", projects[1].Name)

	require.NoError(t, store.RemoveUserFromProject(ctx, user.ID, zeta.ID))
	projects, err = store.ListUserProjects(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	err = store.AssignUserToProject(ctx, user.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_Users(t *testing.T) {
	db := testhelpers.NewDB(t)
	store := models.NewStore(db)
	ctx := context.Background()

	user := models.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, store.CreateUser(ctx, &user))
	assert.NotZero(t, user.ID)

	dup := models.User{Name: "Other", Email: "alice@example.com"}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), apperrors.ErrConflict)

	name := "Alice B."
	inactive := false
	updated, err := store.UpdateUser(ctx, user.ID, models.UserUpdate{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = store.UpdateUser(ctx, 999, models.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSeed(t *testing.T) {
	db := testhelpers.NewDB(t)
	ctx := context.Background()

	result, err := models.Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultQuestions), result.Questions)
	assert.Equal(t, 5, result.Projects)
	assert.NotZero(t, result.Users)
	assert.NotZero(t, result.Assignments)

	again, err := models.Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, models.SeedResult{}, again)

	questions, err := gorm.G[models.Question](db).Order("order_num").Find(ctx)
	require.NoError(t, err)
	for i, q := range questions {
		assert.Equal(t, i+1, q.OrderNum)
	}
}
