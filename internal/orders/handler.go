package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Handler manages client order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the authenticated client order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/client-orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/status", h.updateStatus)
		r.Post("/{id}/items", h.addItem)
		r.Put("/{id}/items/{itemId}", h.updateItem)
		r.Post("/{id}/stock-check", h.verifyStock)
	})
	r.Route("/product-materials", func(r chi.Router) {
		r.Get("/{productId}", h.listRequirements)
		r.Post("/", h.setRequirement)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("list client orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

type createOrderPayload struct {
	ClientID int64 `json:"clientId" validate:"required,gt=0"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload createOrderPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	order, err := h.service.CreateOrder(r.Context(), payload.ClientID)
	if err != nil {
		h.logger.Error("create client order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetOrderDetail(r.Context(), pathID(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

type updateStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var payload updateStatusPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, payload.Status); err != nil {
		h.logger.Error("update order status", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": payload.Status})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var payload OrderItemInput
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	item, err := h.service.AddItem(r.Context(), id, payload)
	if err != nil {
		h.logger.Error("add order item", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, item)
}

type updateItemPayload struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	itemID := pathID(r, "itemId")
	var payload updateItemPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.UpdateItemQuantity(r.Context(), id, itemID, payload.Quantity); err != nil {
		h.logger.Error("update order item", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"quantity": payload.Quantity})
}

func (h *Handler) verifyStock(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	shortages, err := h.service.VerifyStock(r.Context(), id)
	if err != nil {
		h.logger.Error("order stock check", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shortages": shortages, "covered": len(shortages) == 0})
}

func (h *Handler) listRequirements(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRequirements(r.Context(), pathID(r, "productId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

type requirementPayload struct {
	ProductID      int64 `json:"productId" validate:"required,gt=0"`
	MaterialID     int64 `json:"materialId" validate:"required,gt=0"`
	QuantityNeeded int64 `json:"quantityNeeded" validate:"required,gt=0"`
}

func (h *Handler) setRequirement(w http.ResponseWriter, r *http.Request) {
	var payload requirementPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	req, err := h.service.SetRequirement(r.Context(), payload.ProductID, payload.MaterialID, payload.QuantityNeeded)
	if err != nil {
		h.logger.Error("set product requirement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, req)
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}
