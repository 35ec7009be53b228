package handlers

import (
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/CLDWare/csi-survey-backend/config"
)

// SystemHandler handles version and health requests
type SystemHandler struct {
	config  *config.Config
	started time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{
		config:  cfg,
		started: time.Now(),
	}
}

type GetVersionSuccessResponse struct {
	Name        string `json:"name" example:"csi-survey"`
	Version     string `json:"version" example:"1.0.0"`
	Environment string `json:"environment" example:"development"`
}

// GetVersion
//
// @Summary		Get the api version
// @Description	Get current api name, version and deployment env (production, development)
// @Tags			system
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=GetVersionSuccessResponse}
// @Router			/v	[get]
func (h *SystemHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	gecho.Success(w).WithData(GetVersionSuccessResponse{
		Name:        h.config.App.Name,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
	}).Send()
}

type HealthData struct {
	Status    string    `json:"status" example:"OK"`
	Timestamp time.Time `json:"timestamp" format:"date-time"`
	Uptime    string    `json:"uptime" example:"3h2m1s"`
}

// GetHealth
//
// @Summary		Health check
// @Tags			system
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=HealthData}
// @Router			/health	[get]
func (h *SystemHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	gecho.Success(w).WithData(HealthData{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}).Send()
}
