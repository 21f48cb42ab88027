package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SuleimanKh97/test2Master/internal/domain"
)

// Backend is the slice of the cart API the remote store needs. The store
// defines this interface as its consumer; internal/api provides the real
// implementation.
type Backend interface {
	FetchCart(ctx context.Context) ([]domain.CartLine, error)
	AddItem(ctx context.Context, productID int64, quantity int) error
	UpdateQuantity(ctx context.Context, productID int64, quantity int) error
	RemoveItem(ctx context.Context, productID int64) error
	ClearCart(ctx context.Context) error
}

// RemoteStore mirrors a server-owned cart. Every mutation is a write
// followed by a full reload; the reload is the only path that assigns to
// the local mirror, so a failed write leaves the last good snapshot intact.
//
// Mutate-then-reload cycles are serialized per store, so overlapping
// mutations cannot publish stale state out of order. Concurrent Refresh
// calls are coalesced into a single fetch.
type RemoteStore struct {
	// mu spans the entire write+reload cycle of each mutation.
	mu      sync.Mutex
	backend Backend
	log     *zap.Logger
	sfg     singleflight.Group
	pub     publisher

	stateMu sync.Mutex
	lines   []domain.CartLine
}

// NewRemoteStore builds a store with an empty mirror. Call Refresh to load
// the server cart; construction itself performs no I/O.
func NewRemoteStore(backend Backend, logger *zap.Logger) *RemoteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteStore{
		backend: backend,
		log:     logger,
		pub:     newPublisher(),
	}
}

// AddItem sends the add request and reloads the server cart.
func (s *RemoteStore) AddItem(ctx context.Context, product domain.Product, quantity int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.AddItem(ctx, product.ID, quantity); err != nil {
		s.log.Warn("add to cart failed", zap.Int64("product_id", product.ID), zap.Error(err))
		return s.snapshot(), err
	}
	return s.reload(ctx)
}

// UpdateQuantity replaces a line's quantity on the server. Zero or negative
// delegates to RemoveItem.
func (s *RemoteStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) (domain.Snapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.UpdateQuantity(ctx, productID, quantity); err != nil {
		s.log.Warn("update quantity failed", zap.Int64("product_id", productID), zap.Error(err))
		return s.snapshot(), err
	}
	return s.reload(ctx)
}

// RemoveItem deletes a line on the server and reloads.
func (s *RemoteStore) RemoveItem(ctx context.Context, productID int64) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.RemoveItem(ctx, productID); err != nil {
		s.log.Warn("remove from cart failed", zap.Int64("product_id", productID), zap.Error(err))
		return s.snapshot(), err
	}
	return s.reload(ctx)
}

// Clear empties the server cart and reloads.
func (s *RemoteStore) Clear(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ClearCart(ctx); err != nil {
		s.log.Warn("clear cart failed", zap.Error(err))
		return s.snapshot(), err
	}
	return s.reload(ctx)
}

// Refresh fetches the authoritative cart and replaces the mirror.
// Concurrent callers share one fetch.
func (s *RemoteStore) Refresh(ctx context.Context) (domain.Snapshot, error) {
	v, err, _ := s.sfg.Do("refresh", func() (interface{}, error) {
		lines, err := s.backend.FetchCart(ctx)
		if err != nil {
			return nil, err
		}
		return lines, nil
	})
	if err != nil {
		s.log.Warn("cart refresh failed", zap.Error(err))
		return s.snapshot(), err
	}
	return s.replace(v.([]domain.CartLine)), nil
}

func (s *RemoteStore) Items() *Feed[[]domain.CartLine] { return s.pub.items }
func (s *RemoteStore) Total() *Feed[decimal.Decimal]   { return s.pub.total }
func (s *RemoteStore) Count() *Feed[int]               { return s.pub.count }

func (s *RemoteStore) Close() { s.pub.close() }

// reload runs the post-mutation fetch. Callers hold s.mu, which is what
// guarantees the published order matches the mutation order.
func (s *RemoteStore) reload(ctx context.Context) (domain.Snapshot, error) {
	lines, err := s.backend.FetchCart(ctx)
	if err != nil {
		s.log.Warn("cart reload after write failed", zap.Error(err))
		return s.snapshot(), err
	}
	return s.replace(lines), nil
}

func (s *RemoteStore) replace(lines []domain.CartLine) domain.Snapshot {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.lines = lines
	snapshot := domain.NewSnapshot(s.lines)
	s.pub.publish(snapshot)
	return snapshot
}

func (s *RemoteStore) snapshot() domain.Snapshot {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return domain.NewSnapshot(s.lines)
}
