package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
	"github.com/CLDWare/csi-survey-backend/internal/export"
	"github.com/CLDWare/csi-survey-backend/internal/results"
	"github.com/CLDWare/csi-survey-backend/internal/survey"
)

// SurveyHandler handles a user's pass through the questionnaire
type SurveyHandler struct {
	config     *config.Config
	log        *zap.Logger
	engine     *survey.Engine
	aggregator *results.Aggregator
	notifier   *export.Notifier
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(cfg *config.Config, log *zap.Logger, engine *survey.Engine, aggregator *results.Aggregator, notifier *export.Notifier) *SurveyHandler {
	return &SurveyHandler{
		config:     cfg,
		log:        log.Named("survey_handler"),
		engine:     engine,
		aggregator: aggregator,
		notifier:   notifier,
	}
}

type PostSessionBody struct {
	UserID    uint `json:"userId" validate:"required"`
	ProjectID uint `json:"projectId" validate:"required"`
}

type SessionData struct {
	ID        uint `json:"id" example:"12"`
	UserID    uint `json:"userId" example:"3"`
	ProjectID uint `json:"projectId" example:"1"`
}

// PostSession
//
// @Summary		Start a survey session
// @Description	Opens a new session for the user on the project
// @Tags			survey
// @Accept			json
// @Produce		json
// @Param			body	body		PostSessionBody	true	"user and project"
// @Success		200		{object}	apiResponses.BaseResponse{data=SessionData}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		404		{object}	apiResponses.NotFoundError
// @Failure		500		{object}	apiResponses.InternalServerError
// @Router			/survey/session	[post]
func (h *SurveyHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body PostSessionBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	session, err := h.engine.StartSession(r.Context(), body.UserID, body.ProjectID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	gecho.Success(w).WithData(SessionData{
		ID:        session.ID,
		UserID:    session.UserID,
		ProjectID: session.ProjectID,
	}).Send()
}

type PostResponseBody struct {
	SessionID  uint     `json:"sessionId" validate:"required"`
	QuestionID uint     `json:"questionId" validate:"required"`
	Rating     *float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string  `json:"comment" validate:"omitempty,max=2000"`
}

type ResponseData struct {
	ID         uint    `json:"id" example:"40"`
	QuestionID uint    `json:"questionId" example:"2"`
	Rating     int     `json:"rating" example:"4"`
	Comment    *string `json:"comment" example:"Clear requirements"`
}

// PostResponse
//
// @Summary		Record an answer
// @Description	Stores the rating (1-5) and optional comment for one question, replacing an earlier answer to the same question
// @Tags			survey
// @Accept			json
// @Produce		json
// @Param			body	body		PostResponseBody	true	"answer"
// @Success		200		{object}	apiResponses.BaseResponse{data=ResponseData}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		404		{object}	apiResponses.NotFoundError
// @Failure		500		{object}	apiResponses.InternalServerError
// @Router			/survey/response	[post]
func (h *SurveyHandler) PostResponse(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body PostResponseBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}
	// ratings are whole numbers, 4.5 is not a rating
	if *body.Rating != math.Trunc(*body.Rating) {
		gecho.BadRequest(w).WithMessage("rating: must be a whole number between 1 and 5").Send()
		return
	}

	response, err := h.engine.RecordResponse(r.Context(), survey.RecordInput{
		SessionID:  body.SessionID,
		QuestionID: body.QuestionID,
		Rating:     int(*body.Rating),
		Comment:    body.Comment,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	gecho.Success(w).WithData(ResponseData{
		ID:         response.ID,
		QuestionID: response.QuestionID,
		Rating:     response.Rating,
		Comment:    response.Comment,
	}).Send()
}

type PostCompleteBody struct {
	SessionID  uint     `json:"sessionId" validate:"required"`
	TotalScore *float64 `json:"totalScore" validate:"required"`
}

type CompletionData struct {
	SessionID   uint      `json:"sessionId" example:"12"`
	TotalScore  float64   `json:"totalScore" example:"4.25"`
	CompletedAt time.Time `json:"completedAt" format:"date-time"`
	Replayed    bool      `json:"replayed" example:"false"`
}

// PostComplete
//
// @Summary		Complete a survey session
// @Description	Stores the total score, marks the session completed and sends all results to the export channel
// @Tags			survey
// @Accept			json
// @Produce		json
// @Param			body	body		PostCompleteBody	true	"session and total score"
// @Success		200		{object}	apiResponses.BaseResponse{data=CompletionData}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		404		{object}	apiResponses.NotFoundError
// @Failure		409		{object}	apiResponses.ConflictError
// @Failure		429		{object}	apiResponses.TooManyRequestsError
// @Failure		500		{object}	apiResponses.InternalServerError
// @Router			/survey/complete	[post]
func (h *SurveyHandler) PostComplete(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body PostCompleteBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	completion, err := h.engine.CompleteSession(r.Context(), body.SessionID, *body.TotalScore)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if !completion.Replayed {
		if err := h.exportResults(r.Context()); err != nil {
			writeError(w, h.log, err)
			return
		}
	}

	gecho.Success(w).WithMessage("Survey completed").WithData(CompletionData{
		SessionID:   completion.SessionID,
		TotalScore:  completion.TotalScore,
		CompletedAt: completion.CompletedAt,
		Replayed:    completion.Replayed,
	}).Send()
}

// exportResults sends every completed result to the export channel. A missing
// channel is logged only, the survey itself is already saved.
func (h *SurveyHandler) exportResults(ctx context.Context) error {
	grouped, err := h.aggregator.FetchGroupedResults(ctx)
	if err != nil {
		return err
	}

	err = h.notifier.Export(ctx, grouped)
	if errors.Is(err, apperrors.ErrChannelNotConfigured) {
		h.log.Warn("Export channel not configured, survey results not sent")
		return nil
	}
	return err
}
