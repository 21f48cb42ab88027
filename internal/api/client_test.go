package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchCartParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Cart", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"productId": 1, "productName": "Mouse", "quantity": 2, "price": 19.99, "imageUrl": "/img/mouse.jpg"},
			{"productId": 2, "productName": "Stand", "quantity": 1, "price": 42.75, "imageUrl": null}
		]`))
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, WithToken(func(context.Context) (string, error) { return "token-123", nil }))

	lines, err := sut.FetchCart(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, "Mouse", lines[0].ProductName)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "19.99", lines[0].UnitPrice.String())
	assert.Equal(t, "/img/mouse.jpg", lines[0].ImageURL)
	assert.Empty(t, lines[1].ImageURL)
}

func TestClient_AddItemSendsBody(t *testing.T) {
	var got addItemRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"item added"}`))
	}))
	defer srv.Close()

	sut := NewClient(srv.URL)

	err := sut.AddItem(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ProductID)
	assert.Equal(t, 3, got.Quantity)
}

func TestClient_UnauthorizedMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"authentication required"}`))
	}))
	defer srv.Close()

	sut := NewClient(srv.URL)

	err := sut.ClearCart(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Message, "logged in")
}

func TestClient_ValidationErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"quantity must be between 1 and 99"}`))
	}))
	defer srv.Close()

	sut := NewClient(srv.URL)

	err := sut.UpdateQuantity(context.Background(), 1, 500)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, "quantity must be between 1 and 99", apiErr.Message)
}

func TestClient_ServerErrorMapsToServerKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL)

	err := sut.RemoveItem(context.Background(), 1)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestClient_UnreachableServerMapsToNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	sut := NewClient(srv.URL)

	_, err := sut.FetchCart(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, 0, apiErr.Status)
}

func TestClient_BreakerOpensAfterRepeatedServerFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := sut.AddItem(ctx, 1, 1)
		require.Error(t, err)
	}

	// Breaker is open now: the failure is reported without hitting the wire.
	err := sut.AddItem(ctx, 1, 1)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
}
