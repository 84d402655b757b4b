package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

// OrderingHandler exposes diagnostics and repair of the caller's own sequence
type OrderingHandler struct {
	service ports.OrderingService
	logger  *zap.Logger
}

func NewOrderingHandler(service ports.OrderingService, logger *zap.Logger) *OrderingHandler {
	return &OrderingHandler{service: service, logger: logger}
}

// Diagnose returns a report even when anomalies are present.
func (h *OrderingHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	report, err := h.service.Diagnose(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *OrderingHandler) Repair(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	result, err := h.service.Repair(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
