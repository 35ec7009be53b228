package handlers

import (
	"errors"
	"net/http"

	"github.com/MonkyMars/gecho"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
	"github.com/CLDWare/csi-survey-backend/internal/export"
	"github.com/CLDWare/csi-survey-backend/internal/results"
)

// ResultsHandler handles the admin result and export channel requests
type ResultsHandler struct {
	config     *config.Config
	log        *zap.Logger
	aggregator *results.Aggregator
	notifier   *export.Notifier
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(cfg *config.Config, log *zap.Logger, aggregator *results.Aggregator, notifier *export.Notifier) *ResultsHandler {
	return &ResultsHandler{
		config:     cfg,
		log:        log.Named("results_handler"),
		aggregator: aggregator,
		notifier:   notifier,
	}
}

// GetSurveyResults
//
// @Summary		List raw survey results
// @Description	Flat rows of every completed session's responses, newest completion first
// @Tags			admin
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=[]db.ResultRow}
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/admin/survey-results	[get]
func (h *ResultsHandler) GetSurveyResults(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	rows, err := h.aggregator.FetchRows(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(rows).Send()
}

// PostSendResults
//
// @Summary		Send results to the export channel
// @Description	Builds the results workbook and delivers it to the admin chat
// @Tags			admin
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse
// @Failure		429	{object}	apiResponses.TooManyRequestsError
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/admin/send-results	[post]
func (h *ResultsHandler) PostSendResults(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	grouped, err := h.aggregator.FetchGroupedResults(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.notifier.Export(r.Context(), grouped); err != nil {
		writeError(w, h.log, err)
		return
	}

	gecho.Success(w).WithMessage("Results sent to Telegram").Send()
}

// PostTestTelegram
//
// @Summary		Probe the export channel
// @Description	Sends a test message to the admin chat
// @Tags			admin
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse
// @Failure		429	{object}	apiResponses.TooManyRequestsError
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/admin/test-telegram	[post]
func (h *ResultsHandler) PostTestTelegram(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	err := h.notifier.Probe(r.Context())
	switch {
	case err == nil:
		gecho.Success(w).WithMessage("Telegram bot is working").Send()
	case errors.Is(err, apperrors.ErrRateLimited):
		writeError(w, h.log, err)
	default:
		h.log.Warn("Export channel probe failed", zap.Error(err))
		gecho.InternalServerError(w).WithMessage("Telegram bot is not working").Send()
	}
}
