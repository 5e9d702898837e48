package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/deckhand-ai/deckhand/internal/api/middlewares"
	"github.com/deckhand-ai/deckhand/internal/models"
	"github.com/deckhand-ai/deckhand/internal/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
	links    *services.ShareLinkService
}

func NewProjectHandler(projects *services.ProjectService, links *services.ShareLinkService) *ProjectHandler {
	return &ProjectHandler{projects: projects, links: links}
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	project, err := h.projects.Create(r.Context(), userID, req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	projects, err := h.projects.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), project.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createLinkRequest struct {
	LimitTokens int `json:"limit_tokens"`
}

// CreateShareLink issues an investor chat link for one of the caller's
// projects.
func (h *ProjectHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	var req createLinkRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	link, err := h.links.Create(r.Context(), project.ID, req.LimitTokens)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// ownedProject loads the {project_id} route param and checks it belongs
// to the authenticated user. It writes the error response itself.
func (h *ProjectHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if project == nil || project.UserID != userID {
		http.Error(w, "project not found", http.StatusNotFound)
		return nil, false
	}
	return project, true
}
