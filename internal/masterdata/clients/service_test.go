package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logiscontrol/logiscontrol/internal/masterdata/shared"
)

type memoryClientRepo struct {
	clients map[int64]Client
	nextID  int64
}

func newMemoryClientRepo() *memoryClientRepo {
	return &memoryClientRepo{clients: make(map[int64]Client)}
}

func (r *memoryClientRepo) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	var out []Client
	for id := int64(1); id <= r.nextID; id++ {
		if c, ok := r.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *memoryClientRepo) Get(ctx context.Context, id int64) (Client, bool, error) {
	c, ok := r.clients[id]
	return c, ok, nil
}

func (r *memoryClientRepo) GetByTaxNumber(ctx context.Context, taxNumber int64) (Client, bool, error) {
	for _, c := range r.clients {
		if c.TaxNumber == taxNumber {
			return c, true, nil
		}
	}
	return Client{}, false, nil
}

func (r *memoryClientRepo) Create(ctx context.Context, c Client) (int64, error) {
	r.nextID++
	c.ID = r.nextID
	r.clients[c.ID] = c
	return c.ID, nil
}

func (r *memoryClientRepo) Update(ctx context.Context, c Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return ErrNotFound
	}
	r.clients[c.ID] = c
	return nil
}

func TestCreateClientRejectsDuplicateTaxNumber(t *testing.T) {
	svc := NewService(newMemoryClientRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, ClientInput{Name: "Acme Industries", TaxNumber: 501234567, Address: "Porto"})
	require.NoError(t, err)
	require.Equal(t, int64(1), c.ID)

	_, err = svc.Create(ctx, ClientInput{Name: "Other Corp", TaxNumber: 501234567})
	require.ErrorIs(t, err, ErrDuplicateTaxNumber)

	_, err = svc.Create(ctx, ClientInput{Name: "", TaxNumber: 1})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, ClientInput{Name: "No Tax", TaxNumber: 0})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetClientByTaxNumber(t *testing.T) {
	svc := NewService(newMemoryClientRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, ClientInput{Name: "Acme Industries", TaxNumber: 501234567})
	require.NoError(t, err)

	found, err := svc.GetByTaxNumber(ctx, 501234567)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "Acme Industries", found.Name)

	_, err = svc.GetByTaxNumber(ctx, 999999999)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByTaxNumber(ctx, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateClientTaxNumberCollision(t *testing.T) {
	repo := newMemoryClientRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, ClientInput{Name: "Acme Industries", TaxNumber: 501234567})
	require.NoError(t, err)
	second, err := svc.Create(ctx, ClientInput{Name: "Beta Works", TaxNumber: 509876543})
	require.NoError(t, err)

	// moving onto another client's tax number is refused
	err = svc.Update(ctx, second.ID, ClientInput{Name: "Beta Works", TaxNumber: 501234567})
	require.ErrorIs(t, err, ErrDuplicateTaxNumber)

	// keeping your own tax number is fine
	err = svc.Update(ctx, first.ID, ClientInput{Name: "Acme Industries SA", TaxNumber: 501234567, Address: "Lisboa"})
	require.NoError(t, err)
	require.Equal(t, "Acme Industries SA", repo.clients[first.ID].Name)
	require.Equal(t, "Lisboa", repo.clients[first.ID].Address)

	err = svc.Update(ctx, 99, ClientInput{Name: "Ghost", TaxNumber: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirectoryProjectsClient(t *testing.T) {
	svc := NewService(newMemoryClientRepo())
	dir := NewDirectory(svc)

	created, err := svc.Create(context.Background(), ClientInput{Name: "Metalurgica Prado", TaxNumber: 503456789})
	require.NoError(t, err)

	info, ok, err := dir.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created.ID, info.ID)
	require.Equal(t, "Metalurgica Prado", info.Name)

	_, ok, err = dir.Get(context.Background(), 99)
	require.NoError(t, err)
	require.False(t, ok)
}
