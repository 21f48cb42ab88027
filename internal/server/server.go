// Package server is a reference implementation of the backend Cart
// resource. It backs the remote-store integration tests and can run
// standalone for local development; the production backend is a separate
// system that exposes the same contract.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/SuleimanKh97/test2Master/internal/domain"
)

const maxQuantity = 99

type Server struct {
	log *zap.Logger

	mu      sync.RWMutex
	catalog map[int64]domain.Product
	carts   map[string][]domain.CartLine // owner -> lines, insertion order
}

func New(catalog []domain.Product, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		log:     logger,
		catalog: make(map[int64]domain.Product, len(catalog)),
		carts:   make(map[string][]domain.CartLine),
	}
	for _, p := range catalog {
		s.catalog[p.ID] = p
	}
	return s
}

// Handler builds the full router, including auth and instrumentation.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requireBearer)

	r.Route("/Cart", func(r chi.Router) {
		r.Get("/", s.getCart)
		r.Post("/", s.addItem)
		r.Delete("/", s.clearCart)
		r.Put("/{productID}", s.updateQuantity)
		r.Delete("/{productID}", s.removeItem)
	})

	return otelhttp.NewHandler(r, "cart-api")
}

type cartItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl"`
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// requireBearer resolves the cart owner from the bearer token. The
// reference server treats the token itself as the owner identity.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), token)))
	})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.RLock()
	lines := s.carts[owner]
	dtos := make([]cartItemDTO, 0, len(lines))
	for _, l := range lines {
		dto := cartItemDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
		if l.ImageURL != "" {
			url := l.ImageURL
			dto.ImageURL = &url
		}
		dtos = append(dtos, dto)
	}
	s.mu.RUnlock()

	s.respondJSON(w, http.StatusOK, dtos)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		s.respondError(w, http.StatusBadRequest, "productId must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		s.respondError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.catalog[req.ProductID]
	if !ok {
		s.respondError(w, http.StatusNotFound, "Could not find the specified product.")
		return
	}

	lines := s.carts[owner]
	found := false
	for i := range lines {
		if lines[i].ProductID == req.ProductID {
			lines[i].Quantity += req.Quantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, domain.CartLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    req.Quantity,
			ImageURL:    product.ImageURL,
		})
	}
	s.carts[owner] = lines

	s.respondJSON(w, http.StatusCreated, messageResponse{Message: "item added"})
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		s.respondError(w, http.StatusBadRequest, "productId must be a positive integer")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		s.respondError(w, http.StatusBadRequest, "quantity must be between 1 and 99")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[owner]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = req.Quantity
			s.respondJSON(w, http.StatusOK, messageResponse{Message: "quantity updated"})
			return
		}
	}
	s.respondError(w, http.StatusNotFound, "item is not in the cart")
}

// removeItem is idempotent: deleting an absent line still succeeds.
func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		s.respondError(w, http.StatusBadRequest, "productId must be a positive integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[owner]
	for i, l := range lines {
		if l.ProductID == productID {
			s.carts[owner] = append(lines[:i], lines[i+1:]...)
			break
		}
	}

	s.respondJSON(w, http.StatusOK, messageResponse{Message: "item removed"})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.Lock()
	delete(s.carts, owner)
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, messageResponse{Message: "cart cleared"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, messageResponse{Message: message})
}
