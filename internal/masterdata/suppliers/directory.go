package suppliers

import (
	"context"

	"github.com/logiscontrol/logiscontrol/internal/purchasing"
)

// Directory exposes the register to the procurement workflow.
type Directory struct {
	svc *Service
}

// NewDirectory wraps a Service for procurement lookups.
func NewDirectory(svc *Service) *Directory {
	return &Directory{svc: svc}
}

// Get resolves the projection purchasing needs to quote a supplier.
func (d *Directory) Get(ctx context.Context, id int64) (purchasing.SupplierInfo, bool, error) {
	if id <= 0 {
		return purchasing.SupplierInfo{}, false, nil
	}
	sup, ok, err := d.svc.repo.Get(ctx, id)
	if err != nil || !ok {
		return purchasing.SupplierInfo{}, false, err
	}
	return purchasing.SupplierInfo{ID: sup.ID, Name: sup.Name, Email: sup.Email}, true, nil
}
