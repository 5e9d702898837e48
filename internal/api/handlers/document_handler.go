package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/deckhand-ai/deckhand/internal/api/middlewares"
	"github.com/deckhand-ai/deckhand/internal/models"
	"github.com/deckhand-ai/deckhand/internal/services"
)

const maxUploadBytes = 52 << 20 // 52 MB

type DocumentHandler struct {
	documents *services.DocumentService
	projects  *services.ProjectService
}

func NewDocumentHandler(documents *services.DocumentService, projects *services.ProjectService) *DocumentHandler {
	return &DocumentHandler{documents: documents, projects: projects}
}

// Upload accepts a multipart file for a project and answers immediately
// with the document in `processing` state. Extraction and embedding run
// in the background; poll the document until its status settles.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documents.Upload(r.Context(), project.ID, header.Filename, contentType, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	docs, err := h.documents.ListByProject(r.Context(), project.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get reports a single document, mainly for status polling after upload.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	if err := h.documents.Delete(r.Context(), doc.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
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

func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	doc, err := h.documents.Get(r.Context(), chi.URLParam(r, "document_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return nil, false
	}

	project, err := h.projects.Get(r.Context(), doc.ProjectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if project == nil || project.UserID != userID {
		http.Error(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	return doc, true
}
