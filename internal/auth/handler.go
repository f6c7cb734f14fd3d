package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Handler manages authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginPayload struct {
	EmployeeNumber int    `json:"employeeNumber"`
	Password       string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	token, err := h.service.Login(r.Context(), payload.EmployeeNumber, payload.Password)
	if err != nil {
		h.logger.Info("login rejected", slog.Int("employee_number", payload.EmployeeNumber), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}
