package handlers

import (
	"net/http"

	"github.com/MonkyMars/gecho"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/results"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

// CatalogHandler serves what a client needs before starting a survey:
// the users, their projects and the questionnaire.
type CatalogHandler struct {
	config     *config.Config
	log        *zap.Logger
	store      *models.Store
	aggregator *results.Aggregator
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cfg *config.Config, log *zap.Logger, store *models.Store, aggregator *results.Aggregator) *CatalogHandler {
	return &CatalogHandler{
		config:     cfg,
		log:        log.Named("catalog_handler"),
		store:      store,
		aggregator: aggregator,
	}
}

type QuestionData struct {
	ID    uint   `json:"id" example:"1"`
	Text  string `json:"text" example:"How convenient is it to work with the systems analyst?"`
	Order int    `json:"order" example:"1"`
}

// GetQuestions
//
// @Summary		List the questionnaire
// @Description	Active questions ordered by their order number
// @Tags			survey
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=[]QuestionData}
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/questions	[get]
func (h *CatalogHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	questions, err := h.store.ListActiveQuestions(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	data := make([]QuestionData, 0, len(questions))
	for _, q := range questions {
		data = append(data, QuestionData{ID: q.ID, Text: q.Text, Order: q.OrderNum})
	}
	gecho.Success(w).WithData(data).Send()
}

// GetUsers
//
// @Summary		List users
// @Tags			users
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=[]db.User}
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/users	[get]
func (h *CatalogHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(users).Send()
}

// GetUser
//
// @Summary		Get one user
// @Tags			users
// @Produce		json
// @Param			id	path		int	true	"user id"
// @Success		200	{object}	apiResponses.BaseResponse{data=db.User}
// @Failure		400	{object}	apiResponses.BadRequestError
// @Failure		404	{object}	apiResponses.NotFoundError
// @Router			/users/{id}	[get]
func (h *CatalogHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(user).Send()
}

// GetUserResults
//
// @Summary		Get the completed surveys of one user
// @Tags			users
// @Produce		json
// @Param			id	path		int	true	"user id"
// @Success		200	{object}	apiResponses.BaseResponse{data=[]results.GroupedResult}
// @Failure		400	{object}	apiResponses.BadRequestError
// @Failure		404	{object}	apiResponses.NotFoundError
// @Router			/users/{id}/results	[get]
func (h *CatalogHandler) GetUserResults(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if _, err := h.store.GetUser(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	grouped, err := h.aggregator.FetchUserResults(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(grouped).Send()
}

// GetUserProjects
//
// @Summary		List the projects a user is assigned to
// @Tags			users
// @Produce		json
// @Param			userId	path		int	true	"user id"
// @Success		200		{object}	apiResponses.BaseResponse{data=[]db.Project}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Router			/projects/{userId}	[get]
func (h *CatalogHandler) GetUserProjects(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	projects, err := h.store.ListUserProjects(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(projects).Send()
}
