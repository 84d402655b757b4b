package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

type LinkHandler struct {
	service ports.LinkService
	logger  *zap.Logger
}

func NewLinkHandler(service ports.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{service: service, logger: logger}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
}

// UpdateLinkRequest payload
type UpdateLinkRequest struct {
	OriginalURL string `json:"original_url,omitempty"`
	Title       string `json:"title,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

type moveLinkRequest struct {
	Index *int `json:"index"`
}

type reorderRequest struct {
	LinkIDs []int64 `json:"link_ids"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	link, err := h.service.CreateLink(r.Context(), owner, req.OriginalURL, req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	links, err := h.service.ListLinks(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  links,
		"total": len(links),
	})
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	link, err := h.service.UpdateLink(r.Context(), owner, id, req.OriginalURL, req.Title, req.Active)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteLink(r.Context(), owner, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) Move(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req moveLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, "index is required", http.StatusBadRequest)
		return
	}

	if err := h.service.MoveLink(r.Context(), owner, id, *req.Index); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if err := h.service.ReorderLinks(r.Context(), owner, req.LinkIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) Activity(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.ListActivity(r.Context(), owner, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
