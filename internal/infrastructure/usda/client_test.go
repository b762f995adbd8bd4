package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client without retry delays
func newTestClient(baseURL string) *Client {
	client := NewClient("test-api-key", baseURL)
	client.backoff = func(int) time.Duration { return 0 }
	return client
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, exponentialBackoff(1))
	assert.Equal(t, 1000*time.Millisecond, exponentialBackoff(2))
	assert.Equal(t, 2000*time.Millisecond, exponentialBackoff(3))
}

func TestSearchFoods_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "banana", r.URL.Query().Get("query"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))

		writeJSON(w, domain.USDASearchResponse{
			Foods: []domain.USDAFood{{FdcID: 173944, Description: "Bananas, raw"}},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "banana", 50)

	require.NoError(t, err)
	require.Len(t, result.Foods, 1)
	assert.Equal(t, 173944, result.Foods[0].FdcID)
}

func TestSearchFoods_DefaultPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("pageSize"))
		writeJSON(w, domain.USDASearchResponse{Foods: []domain.USDAFood{{FdcID: 1}}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchFoods(context.Background(), "rice", 0)
	require.NoError(t, err)
}

func TestSearchFoods_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "nothing", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchFoods_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, domain.USDASearchResponse{Foods: []domain.USDAFood{}})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "empty", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchFoods_Retries(t *testing.T) {
	tests := []struct {
		name         string
		failStatus   int
		failures     int32
		wantAttempts int32
		wantErr      bool
	}{
		{"server error then success", http.StatusInternalServerError, 2, 3, false},
		{"rate limited then success", http.StatusTooManyRequests, 1, 2, false},
		{"all attempts fail", http.StatusBadGateway, 10, 3, true},
		{"client error is not retried", http.StatusBadRequest, 10, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) <= tt.failures {
					w.WriteHeader(tt.failStatus)
					return
				}
				writeJSON(w, domain.USDASearchResponse{Foods: []domain.USDAFood{{FdcID: 7}}})
			}))
			defer server.Close()

			result, err := newTestClient(server.URL).SearchFoods(context.Background(), "q", 10)

			assert.Equal(t, tt.wantAttempts, attempts.Load())
			if tt.wantErr {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, domain.ErrUSDAAPIFailure)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, result)
			}
		})
	}
}

func TestSearchFoods_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "q", 10)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSearchFoods_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := newTestClient(server.URL).SearchFoods(ctx, "slow", 10)

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestSearchFoods_RequestCreationError(t *testing.T) {
	result, err := newTestClient("://invalid-url").SearchFoods(context.Background(), "q", 10)

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestGetFoodDetails_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/food/173944", r.URL.Path)
		writeJSON(w, domain.USDAFood{
			FdcID:       173944,
			Description: "Bananas, raw",
			Nutrients: []domain.USDANutrient{
				{NutrientID: NutrientIDProtein, Value: 1.09, UnitName: "G"},
			},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).GetFoodDetails(context.Background(), "173944")

	require.NoError(t, err)
	assert.Equal(t, "Bananas, raw", result.Description)
	assert.Len(t, result.Nutrients, 1)
}

func TestGetFoodDetails_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GetFoodDetails(context.Background(), "1")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GetFoodDetails(context.Background(), "1")
		assert.ErrorIs(t, err, domain.ErrUSDAAPIFailure)
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not valid json"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GetFoodDetails(context.Background(), "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})
}

func TestReadLimitedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			w.Write([]byte("0123456789"))
		}
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, 100)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}
