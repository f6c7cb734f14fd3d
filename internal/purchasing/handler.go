package purchasing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Handler manages purchasing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the authenticated purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-requests", func(r chi.Router) {
		r.Post("/", h.createRequest)
		r.Get("/", h.listRequests)
		r.Get("/{id}", h.getRequest)
		r.Post("/{id}/quotation", h.dispatchQuotation)
		r.Get("/{id}/quotation", h.quotationForRequest)
	})
	r.Get("/quotations/{id}", h.getQuotation)
	r.Post("/budgets/{quotationId}/items", h.addBudgetLine)
	r.Post("/budgets/{id}/accept", h.acceptBudget)
	r.Route("/delivery-notes", func(r chi.Router) {
		r.Get("/", h.listNotes)
		r.Get("/{id}", h.getNote)
		r.Patch("/{id}/receive", h.receiveDelivery)
		r.Post("/{id}/dispute", h.disputeDelivery)
		r.Post("/{id}/dispute-email", h.notifyDispute)
		r.Post("/{id}/redeliver", h.confirmRedelivery)
	})
}

// MountPublicRoutes registers the token-protected supplier routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/quotations/{id}/supplier", h.getQuotationForSupplier)
}

type createRequestPayload struct {
	Description string             `json:"description" validate:"required"`
	RequesterID int64              `json:"requesterId" validate:"required,gt=0"`
	Lines       []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var payload createRequestPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	created, err := h.service.CreateRequest(r.Context(), CreateRequestInput{
		Description: payload.Description,
		RequesterID: payload.RequesterID,
		Lines:       payload.Lines,
	})
	if err != nil {
		h.logger.Error("create purchase request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, created)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list purchase requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	detail, err := h.service.GetRequestDetail(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) dispatchQuotation(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplierId"), 10, 64)
	result, err := h.service.DispatchQuotation(r.Context(), id, supplierID)
	if err != nil {
		h.logger.Error("dispatch quotation", slog.Int64("request_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, result)
}

func (h *Handler) quotationForRequest(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	q, found, err := h.service.QuotationForRequest(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !found {
		httpx.Problem(w, http.StatusNotFound, "Not found", "no quotation dispatched for this request")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": q.ID, "status": q.Status, "supplierId": q.SupplierID, "createdAt": q.CreatedAt})
}

func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	detail, err := h.service.GetQuotationDetail(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) getQuotationForSupplier(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	detail, err := h.service.GetQuotationForSupplier(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) addBudgetLine(w http.ResponseWriter, r *http.Request) {
	quotationID := pathID(r, "quotationId")
	var payload BudgetLineInput
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	budget, err := h.service.AddBudgetLine(r.Context(), quotationID, payload)
	if err != nil {
		h.logger.Error("add budget line", slog.Int64("quotation_id", quotationID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, BudgetSummary{ID: budget.ID, QuotationID: budget.QuotationID, CreatedAt: budget.CreatedAt, Status: string(budget.Status)})
}

func (h *Handler) acceptBudget(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	note, err := h.service.AcceptBudget(r.Context(), id)
	if err != nil {
		h.logger.Error("accept budget", slog.Int64("budget_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, note)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListNotes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list delivery notes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	detail, err := h.service.GetNoteDetail(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

type receiveDeliveryPayload struct {
	InGoodCondition *bool `json:"inGoodCondition" validate:"required"`
}

func (h *Handler) receiveDelivery(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var payload receiveDeliveryPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if !*payload.InGoodCondition {
		if err := h.service.DisputeDelivery(r.Context(), id); err != nil {
			h.logger.Error("dispute delivery", slog.Int64("note_id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		// the supplier mail is best effort, the dispute itself already stuck
		if err := h.service.NotifySupplierOfDispute(r.Context(), id); err != nil {
			h.logger.Warn("dispute notification", slog.Int64("note_id", id), slog.Any("error", err))
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": string(NoteDisputed)})
		return
	}
	if err := h.service.ReceiveDelivery(r.Context(), id); err != nil {
		h.logger.Error("receive delivery", slog.Int64("note_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(NoteReceived)})
}

func (h *Handler) disputeDelivery(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := h.service.DisputeDelivery(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(NoteDisputed)})
}

func (h *Handler) notifyDispute(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := h.service.NotifySupplierOfDispute(r.Context(), id); err != nil {
		h.logger.Error("dispute notification", slog.Int64("note_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) confirmRedelivery(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	note, err := h.service.ConfirmRedelivery(r.Context(), id)
	if err != nil {
		h.logger.Error("confirm redelivery", slog.Int64("note_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, note)
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}
