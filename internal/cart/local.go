package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SuleimanKh97/test2Master/internal/domain"
	"github.com/SuleimanKh97/test2Master/internal/persist"
)

const storageKey = "cart"

// LocalStore owns the cart entirely in memory and writes it through to a
// key-value backend after every mutation. Mutations are synchronous and
// never fail: a broken storage backend degrades to an in-memory-only cart.
type LocalStore struct {
	mu    sync.Mutex
	lines []domain.CartLine
	kv    persist.KV
	log   *zap.Logger
	pub   publisher
}

// storedLine is the persisted shape: the full product plus quantity, so a
// reloaded cart can rebuild lines without a catalog lookup.
type storedLine struct {
	Product  storedProduct `json:"product"`
	Quantity int           `json:"quantity"`
}

type storedProduct struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// NewLocalStore loads any previously persisted cart. Unreadable stored data
// is logged and discarded; construction always succeeds with at worst an
// empty cart.
func NewLocalStore(ctx context.Context, kv persist.KV, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LocalStore{
		kv:  kv,
		log: logger,
		pub: newPublisher(),
	}

	data, err := kv.Get(ctx, storageKey)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		// First run, nothing saved yet.
	case err != nil:
		s.log.Warn("loading saved cart failed, starting empty", zap.Error(err))
	default:
		var stored []storedLine
		if err := json.Unmarshal(data, &stored); err != nil {
			s.log.Warn("saved cart is unreadable, starting empty", zap.Error(err))
		} else {
			for _, sl := range stored {
				s.lines = append(s.lines, domain.CartLine{
					ProductID:   sl.Product.ID,
					ProductName: sl.Product.Name,
					UnitPrice:   sl.Product.Price,
					Quantity:    sl.Quantity,
					ImageURL:    sl.Product.ImageURL,
				})
			}
		}
	}

	s.pub.publish(domain.NewSnapshot(s.lines))
	return s
}

// AddItem accumulates quantity onto an existing line or appends a new one.
func (s *LocalStore) AddItem(ctx context.Context, product domain.Product, quantity int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == product.ID {
			s.lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, domain.CartLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
			ImageURL:    product.ImageURL,
		})
	}

	return s.commit(ctx), nil
}

// UpdateQuantity replaces a line's quantity. Zero or negative removes the
// line. Unknown product IDs are a no-op.
func (s *LocalStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) (domain.Snapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return s.commit(ctx), nil
		}
	}
	return domain.NewSnapshot(s.lines), nil
}

// RemoveItem drops the line for the given product, no-op if absent.
func (s *LocalStore) RemoveItem(ctx context.Context, productID int64) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lines {
		if l.ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.commit(ctx), nil
		}
	}
	return domain.NewSnapshot(s.lines), nil
}

// Clear empties the cart.
func (s *LocalStore) Clear(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.commit(ctx), nil
}

// Refresh republishes the current in-memory state. The local store has no
// remote source of truth, so this never changes anything.
func (s *LocalStore) Refresh(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := domain.NewSnapshot(s.lines)
	s.pub.publish(snapshot)
	return snapshot, nil
}

func (s *LocalStore) Items() *Feed[[]domain.CartLine] { return s.pub.items }
func (s *LocalStore) Total() *Feed[decimal.Decimal]   { return s.pub.total }
func (s *LocalStore) Count() *Feed[int]               { return s.pub.count }

func (s *LocalStore) Close() { s.pub.close() }

// commit recomputes derived values, publishes, and writes through to
// storage. A storage failure is logged but never undoes the mutation.
// Callers must hold s.mu.
func (s *LocalStore) commit(ctx context.Context) domain.Snapshot {
	snapshot := domain.NewSnapshot(s.lines)
	s.pub.publish(snapshot)

	stored := make([]storedLine, 0, len(s.lines))
	for _, l := range s.lines {
		stored = append(stored, storedLine{
			Product: storedProduct{
				ID:       l.ProductID,
				Name:     l.ProductName,
				Price:    l.UnitPrice,
				ImageURL: l.ImageURL,
			},
			Quantity: l.Quantity,
		})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		s.log.Warn("encoding cart for storage failed", zap.Error(err))
		return snapshot
	}
	if err := s.kv.Set(ctx, storageKey, data); err != nil {
		s.log.Warn("saving cart failed", zap.Error(err))
	}
	return snapshot
}
