package handlers

import (
	"net/http"

	"github.com/MonkyMars/gecho"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

// AdminHandler handles user, project and assignment management
type AdminHandler struct {
	config *config.Config
	log    *zap.Logger
	store  *models.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cfg *config.Config, log *zap.Logger, store *models.Store) *AdminHandler {
	return &AdminHandler{
		config: cfg,
		log:    log.Named("admin_handler"),
		store:  store,
	}
}

// GetUsers
//
// @Summary		List users for administration
// @Tags			admin
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=[]db.User}
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/admin/users	[get]
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
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

type PostUserBody struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	IsAdmin bool   `json:"is_admin"`
}

// PostUser
//
// @Summary		Create a user
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			body	body		PostUserBody	true	"new user"
// @Success		201		{object}	apiResponses.BaseResponse{data=db.User}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		409		{object}	apiResponses.ConflictError
// @Router			/admin/users	[post]
func (h *AdminHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body PostUserBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := models.User{Name: body.Name, Email: body.Email, IsAdmin: body.IsAdmin, IsActive: true}
	if err := h.store.CreateUser(r.Context(), &user); err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Info("User created", zap.Uint("user_id", user.ID))
	gecho.Created(w).WithData(user).Send()
}

type PutUserBody struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

// PutUser
//
// @Summary		Update a user
// @Description	Only the fields present in the body are changed
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			id		path		int			true	"user id"
// @Param			body	body		PutUserBody	true	"fields to change"
// @Success		200		{object}	apiResponses.BaseResponse{data=db.User}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		404		{object}	apiResponses.NotFoundError
// @Failure		409		{object}	apiResponses.ConflictError
// @Router			/admin/users/{id}	[put]
func (h *AdminHandler) PutUser(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPut); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var body PutUserBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, models.UserUpdate{
		Name:     body.Name,
		Email:    body.Email,
		IsActive: body.IsActive,
		IsAdmin:  body.IsAdmin,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(user).Send()
}

// GetProjects
//
// @Summary		List projects
// @Tags			admin
// @Produce		json
// @Success		200	{object}	apiResponses.BaseResponse{data=[]db.Project}
// @Failure		500	{object}	apiResponses.InternalServerError
// @Router			/admin/projects	[get]
func (h *AdminHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodGet); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(projects).Send()
}

type PostProjectBody struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// PostProject
//
// @Summary		Create a project
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			body	body		PostProjectBody	true	"new project"
// @Success		201		{object}	apiResponses.BaseResponse{data=db.Project}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Router			/admin/projects	[post]
func (h *AdminHandler) PostProject(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body PostProjectBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	project := models.Project{Name: body.Name, Description: body.Description, IsActive: true}
	if err := h.store.CreateProject(r.Context(), &project); err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Info("Project created", zap.Uint("project_id", project.ID))
	gecho.Created(w).WithData(project).Send()
}

type UserProjectBody struct {
	UserID    uint `json:"userId" validate:"required"`
	ProjectID uint `json:"projectId" validate:"required"`
}

// PostUserProject
//
// @Summary		Assign a user to a project
// @Description	Assigning twice is not an error
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			body	body		UserProjectBody	true	"assignment"
// @Success		200		{object}	apiResponses.BaseResponse{data=UserProjectBody}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Failure		404		{object}	apiResponses.NotFoundError
// @Router			/admin/user-projects	[post]
func (h *AdminHandler) PostUserProject(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodPost); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body UserProjectBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.store.AssignUserToProject(r.Context(), body.UserID, body.ProjectID); err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(body).Send()
}

// DeleteUserProject
//
// @Summary		Remove a user from a project
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			body	body		UserProjectBody	true	"assignment"
// @Success		200		{object}	apiResponses.BaseResponse{data=UserProjectBody}
// @Failure		400		{object}	apiResponses.BadRequestError
// @Router			/admin/user-projects	[delete]
func (h *AdminHandler) DeleteUserProject(w http.ResponseWriter, r *http.Request) {
	if err := gecho.Handlers.HandleMethod(w, r, http.MethodDelete); err != nil {
		err.Send() // Automatically sends 405 Method Not Allowed
		return
	}

	var body UserProjectBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.store.RemoveUserFromProject(r.Context(), body.UserID, body.ProjectID); err != nil {
		writeError(w, h.log, err)
		return
	}
	gecho.Success(w).WithData(body).Send()
}
