package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStockSuccess(t *testing.T) {
	var body updateStockRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"message": "1 product updated"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	message, err := client.UpdateStock(context.Background(), map[string]int{"w-1": 3})
	require.NoError(t, err)
	assert.Equal(t, "1 product updated", message)
	assert.Equal(t, map[string]int{"w-1": 3}, body.ProductsToUpdate)
}

func TestUpdateStockSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	_, err := client.UpdateStock(context.Background(), map[string]int{"w-1": 1})
	require.NoError(t, err)
}

func TestUpdateStockAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "unknown product", "details": []string{"w-9"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.UpdateStock(context.Background(), map[string]int{"w-9": 1})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "unknown product", apiErr.Message)
	assert.NotEmpty(t, apiErr.Details)
}

func TestUpdateStockNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "")
	_, err := client.UpdateStock(context.Background(), map[string]int{"w-1": 1})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "network error")
}
