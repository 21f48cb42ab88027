package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/SuleimanKh97/test2Master/internal/domain"
)

// Store is the cart state manager. UI code depends on this interface only;
// whether the cart lives in local storage or on the backend is a wiring
// decision.
//
// Mutations return the snapshot that resulted from the operation. A failed
// mutation returns the last good snapshot untouched, alongside the error.
type Store interface {
	AddItem(ctx context.Context, product domain.Product, quantity int) (domain.Snapshot, error)
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (domain.Snapshot, error)
	RemoveItem(ctx context.Context, productID int64) (domain.Snapshot, error)
	Clear(ctx context.Context) (domain.Snapshot, error)

	// Refresh re-reads the authoritative state. For the local store this
	// republishes the in-memory cart; for the remote store it is the only
	// operation that replaces the local mirror.
	Refresh(ctx context.Context) (domain.Snapshot, error)

	// Items, Total and Count are the three live projections of cart state.
	Items() *Feed[[]domain.CartLine]
	Total() *Feed[decimal.Decimal]
	Count() *Feed[int]

	// Close detaches all subscribers.
	Close()
}

// publisher bundles the three projection feeds shared by both store
// implementations.
type publisher struct {
	items *Feed[[]domain.CartLine]
	total *Feed[decimal.Decimal]
	count *Feed[int]
}

func newPublisher() publisher {
	return publisher{
		items: newFeed([]domain.CartLine{}),
		total: newFeed(decimal.Zero),
		count: newFeed(0),
	}
}

func (p publisher) publish(s domain.Snapshot) {
	p.items.publish(s.Lines)
	p.total.publish(s.TotalPrice)
	p.count.publish(s.TotalCount)
}

func (p publisher) close() {
	p.items.closeAll()
	p.total.closeAll()
	p.count.closeAll()
}
