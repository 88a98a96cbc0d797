package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

// Handler exposes the audit log over HTTP. Access control is applied by the router.
type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/audit", h.listRecords)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.FindAll(r.Context())
	if err != nil {
		h.log.Error("list audit records", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []Record{}
	}
	httpx.Respond(w, http.StatusOK, records)
}
