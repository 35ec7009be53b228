// Package survey records a user's pass through the questionnaire of one
// project: it opens sessions, stores per-question ratings and completes a
// session with its aggregate score.
package survey

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

const (
	MinRating = 1
	MaxRating = 5

	// scores closer than this are equal once rounded to two decimals
	scoreTolerance = 0.005
)

// ScorePolicy decides how the total score supplied at completion is treated.
type ScorePolicy string

const (
	// PolicyTrust stores the supplied score as is.
	PolicyTrust ScorePolicy = "trust"
	// PolicyVerify recomputes the score from the stored ratings and rejects a mismatch.
	PolicyVerify ScorePolicy = "verify"
	// PolicyRecompute ignores the supplied score and stores the recomputed one.
	PolicyRecompute ScorePolicy = "recompute"
)

// ParseScorePolicy maps a configuration value to a ScorePolicy.
func ParseScorePolicy(s string) (ScorePolicy, error) {
	switch p := ScorePolicy(strings.ToLower(s)); p {
	case PolicyTrust, PolicyVerify, PolicyRecompute:
		return p, nil
	default:
		return "", fmt.Errorf("unknown score policy %q", s)
	}
}

// SessionStore persists survey sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.SurveySession) error
	GetSession(ctx context.Context, id uint) (models.SurveySession, error)
	CompleteSession(ctx context.Context, id uint, score float64, at time.Time) (bool, error)
}

// ResponseStore persists one rating per (session, question).
type ResponseStore interface {
	UpsertResponse(ctx context.Context, response *models.SurveyResponse) error
	ListRatings(ctx context.Context, sessionID uint) ([]int, error)
}

// Directory answers whether referenced entities exist.
type Directory interface {
	UserExists(ctx context.Context, id uint) (bool, error)
	ProjectExists(ctx context.Context, id uint) (bool, error)
	QuestionExists(ctx context.Context, id uint) (bool, error)
}

// Engine drives the survey session lifecycle.
type Engine struct {
	sessions  SessionStore
	responses ResponseStore
	directory Directory
	policy    ScorePolicy
	log       *zap.Logger
	now       func() time.Time
}

func NewEngine(sessions SessionStore, responses ResponseStore, directory Directory, policy ScorePolicy, log *zap.Logger) *Engine {
	return &Engine{
		sessions:  sessions,
		responses: responses,
		directory: directory,
		policy:    policy,
		log:       log.Named("survey"),
		now:       time.Now,
	}
}

// Policy returns the score policy the engine completes sessions with.
func (e *Engine) Policy() ScorePolicy {
	return e.policy
}

// StartSession opens a new session for the user on the project. A user may
// hold several open sessions for the same project.
func (e *Engine) StartSession(ctx context.Context, userID, projectID uint) (models.SurveySession, error) {
	if userID == 0 {
		return models.SurveySession{}, apperrors.Validation("userId", "is required")
	}
	if projectID == 0 {
		return models.SurveySession{}, apperrors.Validation("projectId", "is required")
	}

	if err := e.require(ctx, "user", userID, e.directory.UserExists); err != nil {
		return models.SurveySession{}, err
	}
	if err := e.require(ctx, "project", projectID, e.directory.ProjectExists); err != nil {
		return models.SurveySession{}, err
	}

	session := models.SurveySession{UserID: userID, ProjectID: projectID}
	if err := e.sessions.CreateSession(ctx, &session); err != nil {
		return models.SurveySession{}, err
	}

	e.log.Info("Survey session started",
		zap.Uint("session_id", session.ID),
		zap.Uint("user_id", userID),
		zap.Uint("project_id", projectID))
	return session, nil
}

// RecordInput is one answer to one question.
type RecordInput struct {
	SessionID  uint
	QuestionID uint
	Rating     int
	Comment    *string
}

// RecordResponse stores the answer, replacing an earlier answer to the same
// question in the same session. Completed sessions are read-only.
func (e *Engine) RecordResponse(ctx context.Context, in RecordInput) (models.SurveyResponse, error) {
	if in.SessionID == 0 {
		return models.SurveyResponse{}, apperrors.Validation("sessionId", "is required")
	}
	if in.QuestionID == 0 {
		return models.SurveyResponse{}, apperrors.Validation("questionId", "is required")
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return models.SurveyResponse{}, apperrors.Validation("rating", "must be between %d and %d, got %d", MinRating, MaxRating, in.Rating)
	}

	session, err := e.sessions.GetSession(ctx, in.SessionID)
	if err != nil {
		return models.SurveyResponse{}, err
	}
	if session.Completed() {
		return models.SurveyResponse{}, apperrors.Validation("sessionId", "session %d is already completed", in.SessionID)
	}
	if err := e.require(ctx, "question", in.QuestionID, e.directory.QuestionExists); err != nil {
		return models.SurveyResponse{}, err
	}

	response := models.SurveyResponse{
		SessionID:  in.SessionID,
		QuestionID: in.QuestionID,
		Rating:     in.Rating,
		Comment:    normalizeComment(in.Comment),
	}
	if err := e.responses.UpsertResponse(ctx, &response); err != nil {
		return models.SurveyResponse{}, err
	}

	e.log.Debug("Survey response recorded",
		zap.Uint("session_id", in.SessionID),
		zap.Uint("question_id", in.QuestionID),
		zap.Int("rating", in.Rating))
	return response, nil
}

// Completion is the outcome of CompleteSession.
type Completion struct {
	SessionID   uint
	TotalScore  float64
	CompletedAt time.Time
	// Replayed is set when the session was already completed with the same
	// score and nothing was written.
	Replayed bool
}

// CompleteSession moves an open session to completed, storing the total score
// according to the engine's policy. Completing again with the same score is a
// replay; with a different score it fails with ErrConflict.
func (e *Engine) CompleteSession(ctx context.Context, sessionID uint, totalScore float64) (Completion, error) {
	if sessionID == 0 {
		return Completion{}, apperrors.Validation("sessionId", "is required")
	}
	if e.policy != PolicyRecompute {
		if math.IsNaN(totalScore) || math.IsInf(totalScore, 0) || totalScore < MinRating || totalScore > MaxRating {
			return Completion{}, apperrors.Validation("totalScore", "must be between %d and %d, got %v", MinRating, MaxRating, totalScore)
		}
	}

	session, err := e.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Completion{}, err
	}

	score, err := e.resolveScore(ctx, sessionID, totalScore)
	if err != nil {
		return Completion{}, err
	}

	if session.Completed() {
		return e.replay(session, score)
	}

	at := e.now().UTC()
	updated, err := e.sessions.CompleteSession(ctx, sessionID, score, at)
	if err != nil {
		return Completion{}, err
	}
	if !updated {
		// another request completed it between the read and the update
		session, err = e.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return Completion{}, err
		}
		if !session.Completed() {
			return Completion{}, apperrors.Persistence("complete survey session", errors.New("session was not updated"))
		}
		return e.replay(session, score)
	}

	e.log.Info("Survey session completed",
		zap.Uint("session_id", sessionID),
		zap.Float64("total_score", score),
		zap.String("policy", string(e.policy)))
	return Completion{SessionID: sessionID, TotalScore: score, CompletedAt: at}, nil
}

func (e *Engine) resolveScore(ctx context.Context, sessionID uint, supplied float64) (float64, error) {
	if e.policy == PolicyTrust {
		return supplied, nil
	}

	ratings, err := e.responses.ListRatings(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(ratings) == 0 {
		return 0, apperrors.Validation("sessionId", "session %d has no responses", sessionID)
	}
	computed := RoundScore(ratings)

	if e.policy == PolicyVerify && !sameScore(supplied, computed) {
		return 0, apperrors.Validation("totalScore", "%.2f does not match the recorded ratings (%.2f)", supplied, computed)
	}
	return computed, nil
}

func (e *Engine) replay(session models.SurveySession, score float64) (Completion, error) {
	if !sameScore(*session.TotalScore, score) {
		return Completion{}, fmt.Errorf("session %d already completed with score %.2f: %w",
			session.ID, *session.TotalScore, apperrors.ErrConflict)
	}
	e.log.Info("Survey session completion replayed", zap.Uint("session_id", session.ID))
	return Completion{
		SessionID:   session.ID,
		TotalScore:  *session.TotalScore,
		CompletedAt: *session.CompletedAt,
		Replayed:    true,
	}, nil
}

func (e *Engine) require(ctx context.Context, entity string, id uint, exists func(context.Context, uint) (bool, error)) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

// RoundScore is the mean of the ratings rounded to two decimals.
func RoundScore(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return math.Round(float64(sum)/float64(len(ratings))*100) / 100
}

func sameScore(a, b float64) bool {
	return math.Abs(a-b) < scoreTolerance
}

func normalizeComment(comment *string) *string {
	if comment == nil || strings.TrimSpace(*comment) == "" {
		return nil
	}
	c := *comment
	return &c
}
