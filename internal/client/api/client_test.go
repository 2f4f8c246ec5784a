package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/pkg/api"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "gaffer", req.Username)
		assert.Equal(t, "secret", req.Password)

		resp := api.TokenResponse{
			AccessToken: "token-123",
			Username:    "gaffer",
			ExpiresIn:   3600,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.Login(context.Background(), api.LoginRequest{
		Username: "gaffer",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-123", resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestClient_Login_Error(t *testing.T) {
	tests := []struct {
		responseBody   interface{}
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:       "Invalid credentials",
			statusCode: http.StatusUnauthorized,
			responseBody: api.ErrorResponse{
				Error: "invalid credentials",
			},
			expectedErrMsg: "server error (401): invalid credentials",
		},
		{
			name:           "Internal server error",
			statusCode:     http.StatusInternalServerError,
			responseBody:   "Internal Server Error",
			expectedErrMsg: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if errResp, ok := tt.responseBody.(api.ErrorResponse); ok {
					_ = json.NewEncoder(w).Encode(errResp)
				} else {
					_, _ = w.Write([]byte(tt.responseBody.(string)))
				}
			}))
			defer server.Close()

			client := NewClient(server.URL)

			resp, err := client.Login(context.Background(), api.LoginRequest{
				Username: "gaffer",
				Password: "wrong",
			})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
		})
	}
}

func wireRecord() api.ReadinessRecord {
	return api.ReadinessRecord{
		ProjectID: "proj-1",
		Status:    api.StatusReadyForActivation,
		Features: map[string]bool{
			models.FeatureTeamManagement: true,
		},
		BlockingIssues: []string{},
		CalculatedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestClient_FetchRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/projects/proj-1/readiness", r.URL.Path)
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(wireRecord())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAccessToken("test_token")

	record, err := client.FetchRecord(context.Background(), "proj-1")

	require.NoError(t, err)
	assert.Equal(t, "proj-1", record.ProjectID)
	assert.Equal(t, models.StatusReadyForActivation, record.Status)
	assert.True(t, record.Features[models.FeatureTeamManagement])
	assert.Empty(t, record.BlockingIssues)
}

func TestClient_FetchRecord_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "project not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAccessToken("test_token")

	record, err := client.FetchRecord(context.Background(), "missing")

	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "server error (404): project not found")
}

func TestClient_InvalidateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/projects/proj-1/readiness/invalidate", r.URL.Path)
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))

		var req api.InvalidateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "setup_changed", req.Reason)

		_ = json.NewEncoder(w).Encode(wireRecord())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAccessToken("test_token")

	record, err := client.InvalidateRecord(context.Background(), "proj-1", "setup_changed")

	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForActivation, record.Status)
}

func TestClient_UpdateFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/api/v1/projects/proj-1/features", r.URL.Path)
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))

		var req api.FeatureUpdateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{models.FeatureScheduling: true}, req.Features)

		record := wireRecord()
		record.Features[models.FeatureScheduling] = true
		_ = json.NewEncoder(w).Encode(record)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAccessToken("test_token")

	record, err := client.UpdateFeatures(context.Background(), "proj-1",
		map[string]bool{models.FeatureScheduling: true})

	require.NoError(t, err)
	assert.True(t, record.Features[models.FeatureScheduling])
}

func TestClient_Unauthorized_WithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "authorization required"})
			return
		}
		_ = json.NewEncoder(w).Encode(wireRecord())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.FetchRecord(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error (401): authorization required")

	client.SetAccessToken("test_token")
	record, err := client.FetchRecord(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", record.ProjectID)
}
