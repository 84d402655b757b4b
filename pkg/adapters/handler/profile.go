package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

type ProfileHandler struct {
	service ports.ProfileService
	logger  *zap.Logger
}

func NewProfileHandler(service ports.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logger}
}

type saveProfileRequest struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
	Bio    string `json:"bio"`
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.service.SaveProfile(r.Context(), owner, req.Handle, req.Title, req.Bio)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		http.Error(w, "Handle required", http.StatusBadRequest)
		return
	}

	profile, err := h.service.GetPublicProfile(r.Context(), handle)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
