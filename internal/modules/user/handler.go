package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

// Handler provisions accounts. Access control is applied by the router.
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
	r.Post("/api/users", h.registerUser)
	r.Get("/api/users/{login}", h.getUser)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Login    string `json:"login" validate:"required,max=64"`
		Password string `json:"password" validate:"required,max=255"`
		Role     Role   `json:"role" validate:"required"`
	}

	var req request
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Login, req.Password, req.Role)
	switch {
	case errors.Is(err, ErrLoginTaken):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, ErrInvalidAccount), errors.Is(err, ErrUnknownRole):
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("register user", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.Respond(w, http.StatusCreated, user)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "login"))
	if errors.Is(err, ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.log.Error("get user", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.Respond(w, http.StatusOK, user)
}
