package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryOrdersRepo struct {
	nextID       int64
	orders       map[int64]ClientOrder
	items        map[int64]OrderItem
	requirements map[int64][]Requirement
	stock        map[int64]int64
	materials    map[int64]string
	products     map[int64]string
}

func newMemoryOrdersRepo() *memoryOrdersRepo {
	return &memoryOrdersRepo{
		orders:       map[int64]ClientOrder{},
		items:        map[int64]OrderItem{},
		requirements: map[int64][]Requirement{},
		stock:        map[int64]int64{},
		materials:    map[int64]string{},
		products:     map[int64]string{},
	}
}

func (r *memoryOrdersRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryOrdersRepo) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	var out []OrderSummary
	for _, o := range r.orders {
		out = append(out, OrderSummary{ID: o.ID, OrderedAt: o.OrderedAt, Status: o.Status})
	}
	return out, nil
}

func (r *memoryOrdersRepo) GetOrder(ctx context.Context, id int64) (ClientOrder, []OrderItem, error) {
	o, ok := r.orders[id]
	if !ok {
		return ClientOrder{}, nil, ErrNotFound
	}
	var items []OrderItem
	for i := int64(1); i <= r.nextID; i++ {
		if it, ok := r.items[i]; ok && it.OrderID == id {
			items = append(items, it)
		}
	}
	return o, items, nil
}

func (r *memoryOrdersRepo) CreateOrder(ctx context.Context, order ClientOrder) (int64, error) {
	order.ID = r.id()
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *memoryOrdersRepo) UpdateOrderStatus(ctx context.Context, id int64, status OrderState) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *memoryOrdersRepo) CreateItem(ctx context.Context, item OrderItem) (int64, error) {
	item.ID = r.id()
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *memoryOrdersRepo) UpdateItemQuantity(ctx context.Context, orderID, itemID, quantity int64) error {
	it, ok := r.items[itemID]
	if !ok || it.OrderID != orderID {
		return ErrNotFound
	}
	it.Quantity = quantity
	r.items[itemID] = it
	return nil
}

func (r *memoryOrdersRepo) OrderShortages(ctx context.Context, orderID int64) ([]Shortage, error) {
	var out []Shortage
	for _, it := range r.items {
		if it.OrderID != orderID {
			continue
		}
		for _, req := range r.requirements[it.ProductID] {
			required := req.QuantityNeeded * it.Quantity
			available := r.stock[req.MaterialID]
			if available < required {
				out = append(out, Shortage{
					MaterialID:   req.MaterialID,
					MaterialName: r.materials[req.MaterialID],
					ProductName:  r.products[it.ProductID],
					Required:     required,
					Available:    available,
				})
			}
		}
	}
	return out, nil
}

func (r *memoryOrdersRepo) ListRequirements(ctx context.Context, productID int64) ([]Requirement, error) {
	return append([]Requirement(nil), r.requirements[productID]...), nil
}

func (r *memoryOrdersRepo) UpsertRequirement(ctx context.Context, req Requirement) (int64, error) {
	for i, existing := range r.requirements[req.ProductID] {
		if existing.MaterialID == req.MaterialID {
			req.ID = existing.ID
			r.requirements[req.ProductID][i] = req
			return req.ID, nil
		}
	}
	req.ID = r.id()
	r.requirements[req.ProductID] = append(r.requirements[req.ProductID], req)
	return req.ID, nil
}

type fakeClients struct {
	known map[int64]string
}

func (f *fakeClients) Get(ctx context.Context, id int64) (ClientInfo, bool, error) {
	name, ok := f.known[id]
	return ClientInfo{ID: id, Name: name}, ok, nil
}

type fakeCatalog struct {
	known map[int64]bool
}

func (f *fakeCatalog) ProductExists(ctx context.Context, id int64) (bool, error) {
	return f.known[id], nil
}

type fakeNotifier struct {
	sent     []string
	subjects []string
	fail     bool
}

func (f *fakeNotifier) Notify(ctx context.Context, to, subject, body string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, to)
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakeNotifier) TryNotify(ctx context.Context, to, subject, body string) bool {
	return f.Notify(ctx, to, subject, body) == nil
}

type ordersFixture struct {
	repo     *memoryOrdersRepo
	notifier *fakeNotifier
	service  *Service
}

func newOrdersFixture() *ordersFixture {
	repo := newMemoryOrdersRepo()
	repo.materials = map[int64]string{1: "Steel plate", 2: "Bolt M8"}
	repo.products = map[int64]string{10: "Gearbox", 11: "Conveyor belt"}
	notifier := &fakeNotifier{}
	clients := &fakeClients{known: map[int64]string{5: "Metalurgica Prado"}}
	catalog := &fakeCatalog{known: map[int64]bool{10: true, 11: true}}
	svc := NewService(repo, clients, catalog, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)), ServiceConfig{StockAlertRecipient: "stock@factory.example"})
	return &ordersFixture{repo: repo, notifier: notifier, service: svc}
}

func (f *ordersFixture) openOrder(t *testing.T) ClientOrder {
	t.Helper()
	order, err := f.service.CreateOrder(context.Background(), 5)
	require.NoError(t, err)
	return order
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrdersFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrder(ctx, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateOrder(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)

	order := f.openOrder(t)
	require.Equal(t, OrderPending, order.Status)
	require.WithinDuration(t, time.Now().UTC(), order.OrderedAt, time.Minute)
}

func TestAddItemCoveredOrderStaysPending(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)
	f.repo.stock[1] = 100
	_, err := f.service.SetRequirement(context.Background(), 10, 1, 4)
	require.NoError(t, err)

	item, err := f.service.AddItem(context.Background(), order.ID, OrderItemInput{ProductID: 10, Quantity: 5})
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	require.Equal(t, OrderPending, f.repo.orders[order.ID].Status)
	require.Empty(t, f.notifier.sent)
}

func TestAddItemShortMaterialParksOrderAndMails(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)
	f.repo.stock[1] = 10
	_, err := f.service.SetRequirement(context.Background(), 10, 1, 4)
	require.NoError(t, err)

	// 5 gearboxes need 20 steel plates, only 10 on the shelf
	_, err = f.service.AddItem(context.Background(), order.ID, OrderItemInput{ProductID: 10, Quantity: 5})
	require.NoError(t, err)

	require.Equal(t, OrderAwaitingStock, f.repo.orders[order.ID].Status)
	require.Equal(t, []string{"stock@factory.example"}, f.notifier.sent)
	require.Contains(t, f.notifier.subjects[0], "Insufficient stock")
}

func TestVerifyStockReportsShortageLines(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)
	f.repo.stock[1] = 3
	f.repo.stock[2] = 500
	_, err := f.service.SetRequirement(context.Background(), 10, 1, 2)
	require.NoError(t, err)
	_, err = f.service.SetRequirement(context.Background(), 10, 2, 8)
	require.NoError(t, err)
	_, err = f.service.AddItem(context.Background(), order.ID, OrderItemInput{ProductID: 10, Quantity: 4})
	require.NoError(t, err)

	shortages, err := f.service.VerifyStock(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	require.Equal(t, "Steel plate", shortages[0].MaterialName)
	require.Equal(t, int64(8), shortages[0].Required)
	require.Equal(t, int64(3), shortages[0].Available)
}

func TestVerifyStockSurvivesMailFailure(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)
	f.notifier.fail = true
	_, err := f.service.SetRequirement(context.Background(), 10, 1, 4)
	require.NoError(t, err)
	_, err = f.service.AddItem(context.Background(), order.ID, OrderItemInput{ProductID: 10, Quantity: 5})
	require.NoError(t, err)

	// the order is still parked even though the mail never left
	require.Equal(t, OrderAwaitingStock, f.repo.orders[order.ID].Status)
}

func TestAddItemGuards(t *testing.T) {
	f := newOrdersFixture()
	ctx := context.Background()
	order := f.openOrder(t)

	_, err := f.service.AddItem(ctx, order.ID, OrderItemInput{ProductID: 10, Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.service.AddItem(ctx, order.ID, OrderItemInput{ProductID: 404, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.service.UpdateStatus(ctx, order.ID, "CANCELLED"))
	_, err = f.service.AddItem(ctx, order.ID, OrderItemInput{ProductID: 10, Quantity: 1})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateStatusValidatesState(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)

	err := f.service.UpdateStatus(context.Background(), order.ID, "SHIPPED_MAYBE")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.service.UpdateStatus(context.Background(), order.ID, "in_production"))
	require.Equal(t, OrderInProduction, f.repo.orders[order.ID].Status)
}

func TestUpdateItemQuantityRechecksStock(t *testing.T) {
	f := newOrdersFixture()
	order := f.openOrder(t)
	f.repo.stock[1] = 20
	_, err := f.service.SetRequirement(context.Background(), 10, 1, 4)
	require.NoError(t, err)
	item, err := f.service.AddItem(context.Background(), order.ID, OrderItemInput{ProductID: 10, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, OrderPending, f.repo.orders[order.ID].Status)

	require.NoError(t, f.service.UpdateItemQuantity(context.Background(), order.ID, item.ID, 6))

	require.Equal(t, OrderAwaitingStock, f.repo.orders[order.ID].Status)
	require.Len(t, f.notifier.sent, 1)
}

func TestSetRequirementUpsertsPerMaterial(t *testing.T) {
	f := newOrdersFixture()
	ctx := context.Background()

	first, err := f.service.SetRequirement(ctx, 10, 1, 4)
	require.NoError(t, err)
	second, err := f.service.SetRequirement(ctx, 10, 1, 6)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	reqs, err := f.service.ListRequirements(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Equal(t, int64(6), reqs[0].QuantityNeeded)

	_, err = f.service.SetRequirement(ctx, 404, 1, 2)
	require.ErrorIs(t, err, ErrNotFound)
}
