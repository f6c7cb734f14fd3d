package production

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryProdRepo struct {
	orders map[int64]Order
	runs   map[int64]Run
	nextID int64
}

func newMemoryProdRepo() *memoryProdRepo {
	return &memoryProdRepo{orders: make(map[int64]Order), runs: make(map[int64]Run)}
}

func (r *memoryProdRepo) ListOrders(ctx context.Context, state string) ([]Order, error) {
	var out []Order
	for id := int64(1); id <= r.nextID; id++ {
		o, ok := r.orders[id]
		if !ok {
			continue
		}
		if state != "" && string(o.Status) != state {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryProdRepo) GetOrder(ctx context.Context, id int64) (Order, bool, error) {
	o, ok := r.orders[id]
	return o, ok, nil
}

func (r *memoryProdRepo) CreateOrder(ctx context.Context, o Order) (int64, error) {
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return o.ID, nil
}

func (r *memoryProdRepo) UpdateOrder(ctx context.Context, o Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return ErrNotFound
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memoryProdRepo) GetRun(ctx context.Context, id int64) (Run, bool, error) {
	run, ok := r.runs[id]
	return run, ok, nil
}

func (r *memoryProdRepo) ListRunsForOrder(ctx context.Context, orderID int64) ([]Run, error) {
	var out []Run
	for id := int64(1); id <= r.nextID; id++ {
		if run, ok := r.runs[id]; ok && run.OrderID == orderID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *memoryProdRepo) CreateRun(ctx context.Context, run Run) (int64, error) {
	r.nextID++
	run.ID = r.nextID
	r.runs[run.ID] = run
	return run.ID, nil
}

func (r *memoryProdRepo) UpdateRun(ctx context.Context, run Run) error {
	if _, ok := r.runs[run.ID]; !ok {
		return ErrNotFound
	}
	r.runs[run.ID] = run
	return nil
}

type fakeProductStock struct {
	adjustments map[int64]int64
}

func (f *fakeProductStock) AdjustProductQuantity(ctx context.Context, productID int64, delta int64) error {
	if f.adjustments == nil {
		f.adjustments = make(map[int64]int64)
	}
	f.adjustments[productID] += delta
	return nil
}

type mailSpy struct {
	subjects []string
}

func (m *mailSpy) TryNotify(ctx context.Context, to, subject, body string) bool {
	m.subjects = append(m.subjects, subject)
	return true
}

func newProdFixture() (*Service, *memoryProdRepo, *fakeProductStock, *mailSpy) {
	repo := newMemoryProdRepo()
	stock := &fakeProductStock{}
	mail := &mailSpy{}
	svc := NewService(repo, stock, mail, slog.New(slog.NewTextHandler(io.Discard, nil)), ServiceConfig{AlertRecipient: "stock@factory.example"})
	return svc, repo, stock, mail
}

func TestProducedRunCompletesOrderAndBooksStock(t *testing.T) {
	svc, repo, stock, mail := newProdFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{Quantity: 50, MachineID: 1, ProductID: 9})
	require.NoError(t, err)
	require.Equal(t, OrderOpen, order.Status)

	run, err := svc.StartRun(ctx, order.ID, 7)
	require.NoError(t, err)
	require.Equal(t, OrderInProgress, repo.orders[order.ID].Status)

	require.NoError(t, svc.UpdateRun(ctx, run.ID, RunProduced, "all good"))

	stored := repo.orders[order.ID]
	require.Equal(t, OrderDone, stored.Status)
	require.NotNil(t, stored.ClosedAt)
	require.Equal(t, int64(50), stock.adjustments[9])
	require.Equal(t, []string{"Production completed"}, mail.subjects)
	require.Equal(t, "all good", repo.runs[run.ID].Notes)
}

func TestCancelledRunCancelsOrder(t *testing.T) {
	svc, repo, stock, mail := newProdFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{Quantity: 50, MachineID: 1, ProductID: 9})
	require.NoError(t, err)
	run, err := svc.StartRun(ctx, order.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRun(ctx, run.ID, RunCancelled, ""))
	require.Equal(t, OrderCancelled, repo.orders[order.ID].Status)
	require.Empty(t, stock.adjustments)
	require.Equal(t, []string{"Production cancelled"}, mail.subjects)

	// terminal runs cannot move again
	err = svc.UpdateRun(ctx, run.ID, RunProduced, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDefectStopAlertsWithoutClosingOrder(t *testing.T) {
	svc, repo, stock, mail := newProdFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{Quantity: 50, MachineID: 1, ProductID: 9})
	require.NoError(t, err)
	run, err := svc.StartRun(ctx, order.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRun(ctx, run.ID, RunStoppedDefect, "bad tooling"))
	require.Equal(t, OrderInProgress, repo.orders[order.ID].Status)
	require.Empty(t, stock.adjustments)
	require.Equal(t, []string{"Production stopped on defect"}, mail.subjects)

	// a stopped run can resume and finish
	require.NoError(t, svc.UpdateRun(ctx, run.ID, RunProduced, ""))
	require.Equal(t, OrderDone, repo.orders[order.ID].Status)
	require.Equal(t, int64(50), stock.adjustments[9])
}

func TestStartRunGuards(t *testing.T) {
	svc, _, _, _ := newProdFixture()
	ctx := context.Background()

	_, err := svc.StartRun(ctx, 99, 7)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.StartRun(ctx, 0, 7)
	require.ErrorIs(t, err, ErrValidation)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{Quantity: 1, MachineID: 1, ProductID: 9})
	require.NoError(t, err)
	run, err := svc.StartRun(ctx, order.ID, 7)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateRun(ctx, run.ID, RunCancelled, ""))

	_, err = svc.StartRun(ctx, order.ID, 7)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateRunValidation(t *testing.T) {
	svc, _, _, _ := newProdFixture()
	err := svc.UpdateRun(context.Background(), 0, RunProduced, "")
	require.ErrorIs(t, err, ErrValidation)
	err = svc.UpdateRun(context.Background(), 1, RunState("NOPE"), "")
	require.ErrorIs(t, err, ErrValidation)
	err = svc.UpdateRun(context.Background(), 99, RunProduced, "")
	require.ErrorIs(t, err, ErrNotFound)
}
