package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ListProjects handles GET /api/projects.
//
//	@Summary		List projects
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	ProjectListResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects})
}

// GetProject handles GET /api/projects/{projectID}.
//
//	@Summary		Get a project
//	@Tags			projects
//	@Produce		json
//	@Param			projectID	path		string	true	"Project ID"
//	@Success		200			{object}	models.Project
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), projectID(r))
	if err != nil {
		writeServiceError(w, "get project", err, slog.String("project_id", projectID(r)))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProject handles POST /api/projects.
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProjectRequest	true	"Project to create"
//	@Success		201		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	p, err := h.svc.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, "create project", err, slog.String("name", req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
