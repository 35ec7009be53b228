package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
)

// Store implements every persistence contract of the service on top of gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) exists(ctx context.Context, model any, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Survey sessions

func (s *Store) CreateSession(ctx context.Context, session *SurveySession) error {
	return apperrors.Persistence("create survey session", gorm.G[SurveySession](s.db).Create(ctx, session))
}

func (s *Store) GetSession(ctx context.Context, id uint) (SurveySession, error) {
	session, err := gorm.G[SurveySession](s.db).Where("id = ?", id).First(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SurveySession{}, apperrors.NotFound("survey session", id)
	}
	if err != nil {
		return SurveySession{}, apperrors.Persistence("get survey session", err)
	}
	return session, nil
}

// CompleteSession stores the score and completion time in one conditional
// update. It reports false when the session was not open.
func (s *Store) CompleteSession(ctx context.Context, id uint, score float64, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&SurveySession{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]any{
			"total_score":  score,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, apperrors.Persistence("complete survey session", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Survey responses

// UpsertResponse inserts the response or replaces the rating and comment of an
// earlier answer to the same question in the same session.
func (s *Store) UpsertResponse(ctx context.Context, response *SurveyResponse) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at"}),
		}).
		Create(response).Error
	if err != nil {
		return apperrors.Persistence("save survey response", err)
	}

	// the insert id is meaningless when the conflict branch ran
	stored, err := gorm.G[SurveyResponse](s.db).
		Where("session_id = ? AND question_id = ?", response.SessionID, response.QuestionID).
		First(ctx)
	if err != nil {
		return apperrors.Persistence("reload survey response", err)
	}
	*response = stored
	return nil
}

func (s *Store) ListRatings(ctx context.Context, sessionID uint) ([]int, error) {
	var ratings []int
	err := s.db.WithContext(ctx).
		Model(&SurveyResponse{}).
		Where("session_id = ?", sessionID).
		Order("question_id").
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, apperrors.Persistence("list ratings", err)
	}
	return ratings, nil
}

func (s *Store) CountResponses(ctx context.Context, sessionID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&SurveyResponse{}).Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return 0, apperrors.Persistence("count responses", err)
	}
	return n, nil
}

// Question catalog

func (s *Store) ListActiveQuestions(ctx context.Context) ([]Question, error) {
	questions, err := gorm.G[Question](s.db).Where("is_active = ?", true).Order("order_num").Find(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list questions", err)
	}
	return questions, nil
}

func (s *Store) QuestionExists(ctx context.Context, id uint) (bool, error) {
	ok, err := s.exists(ctx, &Question{}, id)
	return ok, apperrors.Persistence("lookup question", err)
}

func (s *Store) UserExists(ctx context.Context, id uint) (bool, error) {
	ok, err := s.exists(ctx, &User{}, id)
	return ok, apperrors.Persistence("lookup user", err)
}

func (s *Store) ProjectExists(ctx context.Context, id uint) (bool, error) {
	ok, err := s.exists(ctx, &Project{}, id)
	return ok, apperrors.Persistence("lookup project", err)
}

// Results

const resultSelect = `
SELECT
	ss.id AS session_id,
	u.name AS user_name,
	p.name AS project_name,
	q.text AS question_text,
	q.order_num AS question_order,
	sr.rating,
	sr.comment,
	ss.total_score,
	ss.completed_at
FROM survey_responses sr
INNER JOIN survey_sessions ss ON sr.session_id = ss.id
INNER JOIN users u ON ss.user_id = u.id
INNER JOIN projects p ON ss.project_id = p.id
INNER JOIN questions q ON sr.question_id = q.id
WHERE ss.completed_at IS NOT NULL`

const resultOrder = `
ORDER BY ss.completed_at DESC, u.name, q.order_num`

// ListResultRows returns the responses of every completed session, newest
// completion first, then by user name and question order.
func (s *Store) ListResultRows(ctx context.Context) ([]ResultRow, error) {
	var rows []ResultRow
	if err := s.db.WithContext(ctx).Raw(resultSelect + resultOrder).Scan(&rows).Error; err != nil {
		return nil, apperrors.Persistence("list survey results", err)
	}
	return rows, nil
}

// ListUserResultRows is ListResultRows restricted to one user's sessions.
func (s *Store) ListUserResultRows(ctx context.Context, userID uint) ([]ResultRow, error) {
	var rows []ResultRow
	query := resultSelect + " AND ss.user_id = ?" + resultOrder
	if err := s.db.WithContext(ctx).Raw(query, userID).Scan(&rows).Error; err != nil {
		return nil, apperrors.Persistence("list user survey results", err)
	}
	return rows, nil
}

// Users

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	users, err := gorm.G[User](s.db).Order("created_at DESC").Order("id DESC").Find(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list users", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (User, error) {
	user, err := gorm.G[User](s.db).Where("id = ?", id).First(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, apperrors.NotFound("user", id)
	}
	if err != nil {
		return User{}, apperrors.Persistence("get user", err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	err := gorm.G[User](s.db).Create(ctx, user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("user with email %q already exists: %w", user.Email, apperrors.ErrConflict)
	}
	return apperrors.Persistence("create user", err)
}

// UserUpdate carries the user fields to change, nil fields are left alone.
type UserUpdate struct {
	Name     *string
	Email    *string
	IsActive *bool
	IsAdmin  *bool
}

func (s *Store) UpdateUser(ctx context.Context, id uint, update UserUpdate) (User, error) {
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.IsActive != nil {
		fields["is_active"] = *update.IsActive
	}
	if update.IsAdmin != nil {
		fields["is_admin"] = *update.IsAdmin
	}

	if len(fields) > 0 {
		err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, fmt.Errorf("user with email %q already exists: %w", *update.Email, apperrors.ErrConflict)
		}
		if err != nil {
			return User{}, apperrors.Persistence("update user", err)
		}
	}
	return s.GetUser(ctx, id)
}

// Projects

func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := gorm.G[Project](s.db).Order("name").Find(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list projects", err)
	}
	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, project *Project) error {
	return apperrors.Persistence("create project", gorm.G[Project](s.db).Create(ctx, project))
}

// ListUserProjects returns the active projects the user is assigned to.
func (s *Store) ListUserProjects(ctx context.Context, userID uint) ([]Project, error) {
	var projects []Project
	err := s.db.WithContext(ctx).
		Model(&Project{}).
		Joins("INNER JOIN user_projects up ON projects.id = up.project_id").
		Where("up.user_id = ? AND projects.is_active = ?", userID, true).
		Order("projects.name").
		Find(&projects).Error
	if err != nil {
		return nil, apperrors.Persistence("list user projects", err)
	}
	return projects, nil
}

// AssignUserToProject is a no-op when the assignment already exists.
func (s *Store) AssignUserToProject(ctx context.Context, userID, projectID uint) error {
	if err := s.requireUserAndProject(ctx, userID, projectID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&UserProject{UserID: userID, ProjectID: projectID}).Error
	return apperrors.Persistence("assign user to project", err)
}

func (s *Store) RemoveUserFromProject(ctx context.Context, userID, projectID uint) error {
	_, err := gorm.G[UserProject](s.db).Where("user_id = ? AND project_id = ?", userID, projectID).Delete(ctx)
	return apperrors.Persistence("remove user from project", err)
}

func (s *Store) requireUserAndProject(ctx context.Context, userID, projectID uint) error {
	ok, err := s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("user", userID)
	}
	ok, err = s.ProjectExists(ctx, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	return nil
}
