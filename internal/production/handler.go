package production

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/logiscontrol/logiscontrol/internal/auth"
	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Handler manages production endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/runs", h.startRun)
	})
	r.Patch("/runs/{id}", h.updateRun)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list production orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var input CreateOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	o, err := h.service.CreateOrder(r.Context(), input)
	if err != nil {
		h.logger.Error("create production order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	o, runs, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": o, "runs": runs})
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	claims, _ := auth.ClaimsFromContext(r.Context())
	run, err := h.service.StartRun(r.Context(), id, claims.UserID)
	if err != nil {
		h.logger.Error("start production run", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, run)
}

type updateRunPayload struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (h *Handler) updateRun(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var payload updateRunPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.UpdateRun(r.Context(), id, RunState(payload.Status), payload.Notes); err != nil {
		h.logger.Error("update production run", slog.Int64("run_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
