package api

import (
	"net/http"

	"github.com/MonkyMars/gecho"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/export"
	"github.com/CLDWare/csi-survey-backend/internal/handlers"
	"github.com/CLDWare/csi-survey-backend/internal/middleware"
	"github.com/CLDWare/csi-survey-backend/internal/results"
	"github.com/CLDWare/csi-survey-backend/internal/survey"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

// Dependencies are the long lived services the handlers are built from
type Dependencies struct {
	Config     *config.Config
	Log        *zap.Logger
	Store      *models.Store
	Engine     *survey.Engine
	Aggregator *results.Aggregator
	Notifier   *export.Notifier
}

// API holds the API dependencies
type API struct {
	config         *config.Config
	log            *zap.Logger
	limiter        *middleware.RateLimiter
	systemHandler  *handlers.SystemHandler
	catalogHandler *handlers.CatalogHandler
	surveyHandler  *handlers.SurveyHandler
	adminHandler   *handlers.AdminHandler
	resultsHandler *handlers.ResultsHandler
}

// NewAPI creates a new API instance
func NewAPI(deps Dependencies) *API {
	cfg := deps.Config
	return &API{
		config:         cfg,
		log:            deps.Log,
		limiter:        middleware.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max),
		systemHandler:  handlers.NewSystemHandler(cfg),
		catalogHandler: handlers.NewCatalogHandler(cfg, deps.Log, deps.Store, deps.Aggregator),
		surveyHandler:  handlers.NewSurveyHandler(cfg, deps.Log, deps.Engine, deps.Aggregator, deps.Notifier),
		adminHandler:   handlers.NewAdminHandler(cfg, deps.Log, deps.Store),
		resultsHandler: handlers.NewResultsHandler(cfg, deps.Log, deps.Aggregator, deps.Notifier),
	}
}

// RateLimiter returns the inbound limiter so its idle entries can be evicted
func (api *API) RateLimiter() *middleware.RateLimiter {
	return api.limiter
}

// CreateMux creates and configures the HTTP mux
func (api *API) CreateMux() *http.ServeMux {
	mux := http.NewServeMux()
	api.setupRoutes(mux)
	return mux
}

// setupRoutes configures all the routes.
func (api *API) setupRoutes(mux *http.ServeMux) {
	// System routes
	mux.HandleFunc("/api/v", api.systemHandler.GetVersion)
	mux.HandleFunc("/api/health", api.systemHandler.GetHealth)

	// Catalog
	mux.HandleFunc("/api/questions", api.catalogHandler.GetQuestions)
	mux.HandleFunc("/api/users", api.catalogHandler.GetUsers)
	mux.HandleFunc("/api/users/{id}", api.catalogHandler.GetUser)
	mux.HandleFunc("/api/users/{id}/results", api.catalogHandler.GetUserResults)
	mux.HandleFunc("/api/projects/{userId}", api.catalogHandler.GetUserProjects)

	// Survey session lifecycle
	mux.HandleFunc("/api/survey/session", api.surveyHandler.PostSession)
	mux.HandleFunc("/api/survey/response", api.surveyHandler.PostResponse)
	mux.HandleFunc("/api/survey/complete", api.surveyHandler.PostComplete)

	// Admin
	mux.HandleFunc("GET /api/admin/users", api.adminHandler.GetUsers)
	mux.HandleFunc("POST /api/admin/users", api.adminHandler.PostUser)
	mux.HandleFunc("/api/admin/users/{id}", api.adminHandler.PutUser)
	mux.HandleFunc("GET /api/admin/projects", api.adminHandler.GetProjects)
	mux.HandleFunc("POST /api/admin/projects", api.adminHandler.PostProject)
	mux.HandleFunc("POST /api/admin/user-projects", api.adminHandler.PostUserProject)
	mux.HandleFunc("DELETE /api/admin/user-projects", api.adminHandler.DeleteUserProject)
	mux.HandleFunc("/api/admin/survey-results", api.resultsHandler.GetSurveyResults)
	mux.HandleFunc("/api/admin/send-results", api.resultsHandler.PostSendResults)
	mux.HandleFunc("/api/admin/test-telegram", api.resultsHandler.PostTestTelegram)

	// OpenAPI docs
	mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// fallback route - must be last because it matches all routes.
	mux.HandleFunc("/", fallBack)
}

// ApplyMiddleware wraps the mux in request logging, security headers, CORS
// and the inbound rate limiter, outermost first.
func (api *API) ApplyMiddleware(handler http.Handler) http.Handler {
	return middleware.LoggingMiddleware(api.log)(
		middleware.SecureHeaders(
			middleware.CORSMiddleware(api.config.CORS.AllowedOrigin)(
				api.limiter.Middleware(handler),
			),
		),
	)
}

func fallBack(w http.ResponseWriter, r *http.Request) {
	gecho.NotFound(w).Send()
}
