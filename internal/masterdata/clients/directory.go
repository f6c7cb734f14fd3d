package clients

import (
	"context"

	"github.com/logiscontrol/logiscontrol/internal/orders"
)

// Directory exposes the register to the client order workflow.
type Directory struct {
	svc *Service
}

// NewDirectory wraps a Service for order lookups.
func NewDirectory(svc *Service) *Directory {
	return &Directory{svc: svc}
}

// Get resolves the projection orders needs to open a client order.
func (d *Directory) Get(ctx context.Context, id int64) (orders.ClientInfo, bool, error) {
	if id <= 0 {
		return orders.ClientInfo{}, false, nil
	}
	c, ok, err := d.svc.repo.Get(ctx, id)
	if err != nil || !ok {
		return orders.ClientInfo{}, false, err
	}
	return orders.ClientInfo{ID: c.ID, Name: c.Name}, true, nil
}
