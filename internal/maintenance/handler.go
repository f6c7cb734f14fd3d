package maintenance

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/logiscontrol/logiscontrol/internal/auth"
	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Handler manages maintenance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers maintenance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/machines", func(r chi.Router) {
		r.Get("/", h.listMachines)
		r.Post("/", h.createMachine)
	})
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.listRequests)
		r.Post("/", h.createRequest)
		r.Get("/overdue", h.listOverdue)
		r.Patch("/{id}/state", h.updateState)
		r.Post("/{id}/reopen", h.reopen)
		r.Get("/{id}/records", h.listRecords)
		r.Post("/{id}/records", h.addRecord)
	})
	r.Post("/records/{id}/resolve", h.resolveRecord)
}

func (h *Handler) listMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.service.ListMachines(r.Context())
	if err != nil {
		h.logger.Error("list machines", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": machines})
}

func (h *Handler) createMachine(w http.ResponseWriter, r *http.Request) {
	var input CreateMachineInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	m, err := h.service.CreateMachine(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, m)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list maintenance requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) listOverdue(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListOverdue(r.Context())
	if err != nil {
		h.logger.Error("list overdue requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var input CreateRequestInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	req, err := h.service.CreateRequest(r.Context(), input, claims.UserID)
	if err != nil {
		h.logger.Error("create maintenance request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, req)
}

type statePayload struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateState(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload statePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.UpdateRequestState(r.Context(), id, RequestState(payload.Status)); err != nil {
		h.logger.Error("update request state", slog.Int64("request_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reopenPayload struct {
	Justification string `json:"justification" validate:"required"`
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload reopenPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	actor := "operator"
	if claims.EmployeeNumber > 0 {
		actor = strconv.Itoa(claims.EmployeeNumber)
	}
	if err := h.service.ReopenRequest(r.Context(), id, payload.Justification, actor); err != nil {
		h.logger.Error("reopen request", slog.Int64("request_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.RecordsForRequest(r.Context(), pathID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *Handler) addRecord(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var input RecordInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	rec, err := h.service.AddRecord(r.Context(), id, input, claims.UserID)
	if err != nil {
		h.logger.Error("add maintenance record", slog.Int64("request_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, rec)
}

type resolvePayload struct {
	Resolution string `json:"resolution"`
}

func (h *Handler) resolveRecord(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var payload resolvePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.ResolveRecord(r.Context(), id, payload.Resolution); err != nil {
		h.logger.Error("resolve maintenance record", slog.Int64("record_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}
