package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RepositoryPort describes the order store used by Service.
type RepositoryPort interface {
	ListOrders(ctx context.Context) ([]OrderSummary, error)
	GetOrder(ctx context.Context, id int64) (ClientOrder, []OrderItem, error)
	CreateOrder(ctx context.Context, order ClientOrder) (int64, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderState) error
	CreateItem(ctx context.Context, item OrderItem) (int64, error)
	UpdateItemQuantity(ctx context.Context, orderID, itemID, quantity int64) error
	OrderShortages(ctx context.Context, orderID int64) ([]Shortage, error)
	ListRequirements(ctx context.Context, productID int64) ([]Requirement, error)
	UpsertRequirement(ctx context.Context, req Requirement) (int64, error)
}

// ClientInfo is the projection orders needs from the client register.
type ClientInfo struct {
	ID   int64
	Name string
}

// ClientDirectory resolves registered clients.
type ClientDirectory interface {
	Get(ctx context.Context, id int64) (ClientInfo, bool, error)
}

// ProductCatalog answers product existence checks.
type ProductCatalog interface {
	ProductExists(ctx context.Context, id int64) (bool, error)
}

// Notifier delivers outbound messages.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
	TryNotify(ctx context.Context, to, subject, body string) bool
}

// ServiceConfig carries orders tunables.
type ServiceConfig struct {
	StockAlertRecipient string
}

// Service manages client orders and their material coverage.
type Service struct {
	repo     RepositoryPort
	clients  ClientDirectory
	products ProductCatalog
	notifier Notifier
	logger   *slog.Logger
	cfg      ServiceConfig
}

// NewService constructs orders service.
func NewService(repo RepositoryPort, clients ClientDirectory, products ProductCatalog, notifier Notifier, logger *slog.Logger, cfg ServiceConfig) *Service {
	return &Service{repo: repo, clients: clients, products: products, notifier: notifier, logger: logger, cfg: cfg}
}

// OrderDetail bundles an order with its lines.
type OrderDetail struct {
	ClientOrder
	Items []OrderItem `json:"items"`
}

// OrderItemInput is the add/update payload for one order line.
type OrderItemInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// ListOrders returns all orders newest first.
func (s *Service) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	return s.repo.ListOrders(ctx)
}

// GetOrderDetail resolves an order with its items.
func (s *Service) GetOrderDetail(ctx context.Context, id int64) (OrderDetail, error) {
	if id <= 0 {
		return OrderDetail{}, ErrValidation
	}
	order, items, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{ClientOrder: order, Items: items}, nil
}

// CreateOrder opens a pending order for a registered client.
func (s *Service) CreateOrder(ctx context.Context, clientID int64) (ClientOrder, error) {
	if clientID <= 0 {
		return ClientOrder{}, fmt.Errorf("%w: client id must be positive", ErrValidation)
	}
	_, ok, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return ClientOrder{}, err
	}
	if !ok {
		return ClientOrder{}, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}
	order := ClientOrder{OrderedAt: time.Now().UTC(), Status: OrderPending, ClientID: clientID}
	id, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return ClientOrder{}, err
	}
	order.ID = id
	return order, nil
}

// UpdateStatus moves an order to the given state. Any known state is
// accepted; the back office overrides order progress by hand.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if id <= 0 {
		return ErrValidation
	}
	next := OrderState(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Known() {
		return fmt.Errorf("%w: unknown order state %q", ErrValidation, status)
	}
	return s.repo.UpdateOrderStatus(ctx, id, next)
}

// AddItem appends a product line and re-checks material coverage.
func (s *Service) AddItem(ctx context.Context, orderID int64, input OrderItemInput) (OrderItem, error) {
	if orderID <= 0 || input.ProductID <= 0 || input.Quantity <= 0 {
		return OrderItem{}, ErrValidation
	}
	order, _, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return OrderItem{}, err
	}
	if order.Status == OrderFulfilled || order.Status == OrderCancelled {
		return OrderItem{}, fmt.Errorf("%w: order %d is %s", ErrConflict, orderID, order.Status)
	}
	ok, err := s.products.ProductExists(ctx, input.ProductID)
	if err != nil {
		return OrderItem{}, err
	}
	if !ok {
		return OrderItem{}, fmt.Errorf("%w: product %d", ErrNotFound, input.ProductID)
	}
	item := OrderItem{OrderID: orderID, ProductID: input.ProductID, Quantity: input.Quantity}
	id, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return OrderItem{}, err
	}
	item.ID = id
	if _, err := s.VerifyStock(ctx, orderID); err != nil {
		s.logger.Warn("order stock check", slog.Int64("order_id", orderID), slog.Any("error", err))
	}
	return item, nil
}

// UpdateItemQuantity changes a line quantity and re-checks coverage.
func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID, quantity int64) error {
	if orderID <= 0 || itemID <= 0 || quantity <= 0 {
		return ErrValidation
	}
	if err := s.repo.UpdateItemQuantity(ctx, orderID, itemID, quantity); err != nil {
		return err
	}
	if _, err := s.VerifyStock(ctx, orderID); err != nil {
		s.logger.Warn("order stock check", slog.Int64("order_id", orderID), slog.Any("error", err))
	}
	return nil
}

// VerifyStock compares the order's material needs against current stock.
// When any material falls short the order is parked as awaiting stock and
// the stock owner is mailed a shortage digest.
func (s *Service) VerifyStock(ctx context.Context, orderID int64) ([]Shortage, error) {
	if orderID <= 0 {
		return nil, ErrValidation
	}
	shortages, err := s.repo.OrderShortages(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(shortages) == 0 {
		return nil, nil
	}
	if err := s.repo.UpdateOrderStatus(ctx, orderID, OrderAwaitingStock); err != nil {
		return shortages, err
	}
	var sb strings.Builder
	for _, sh := range shortages {
		fmt.Fprintf(&sb, "%s: need %d for %s, only %d in stock\n", sh.MaterialName, sh.Required, sh.ProductName, sh.Available)
	}
	subject := fmt.Sprintf("Insufficient stock for order #%d", orderID)
	if s.cfg.StockAlertRecipient != "" {
		if !s.notifier.TryNotify(ctx, s.cfg.StockAlertRecipient, subject, sb.String()) {
			s.logger.Warn("shortage alert not delivered", slog.Int64("order_id", orderID))
		}
	}
	return shortages, nil
}

// ListRequirements returns the bill of materials for a product.
func (s *Service) ListRequirements(ctx context.Context, productID int64) ([]Requirement, error) {
	if productID <= 0 {
		return nil, ErrValidation
	}
	return s.repo.ListRequirements(ctx, productID)
}

// SetRequirement creates or replaces the per-unit material need of a product.
func (s *Service) SetRequirement(ctx context.Context, productID, materialID, quantityNeeded int64) (Requirement, error) {
	if productID <= 0 || materialID <= 0 || quantityNeeded <= 0 {
		return Requirement{}, ErrValidation
	}
	ok, err := s.products.ProductExists(ctx, productID)
	if err != nil {
		return Requirement{}, err
	}
	if !ok {
		return Requirement{}, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	req := Requirement{ProductID: productID, MaterialID: materialID, QuantityNeeded: quantityNeeded}
	id, err := s.repo.UpsertRequirement(ctx, req)
	if err != nil {
		return Requirement{}, err
	}
	req.ID = id
	return req, nil
}
