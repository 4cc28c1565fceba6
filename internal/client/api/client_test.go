package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Register проверяет успешную регистрацию
func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "driver_01", req.Username)
		assert.Equal(t, "driver@example.com", req.Email)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.RegisterResponse{UserID: "user-123", Message: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "driver_01",
		Email:    "driver@example.com",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-123", resp.UserID)
}

// TestClient_Login_Errors проверяет обработку ошибок сервера
func TestClient_Login_Errors(t *testing.T) {
	tests := []struct {
		responseBody   interface{}
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:           "Invalid credentials",
			statusCode:     http.StatusUnauthorized,
			responseBody:   api.ErrorResponse{Error: "Unauthorized", Message: "invalid credentials"},
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
			resp, err := client.Login(context.Background(), api.LoginRequest{Username: "driver_01", Password: "x"})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
			assert.Equal(t, tt.statusCode == http.StatusUnauthorized, errors.Is(err, api.ErrUnauthorized))
		})
	}
}

// TestClient_Login проверяет успешный вход
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			UserID:       "user-1",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Login(context.Background(), api.LoginRequest{Username: "driver_01", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

// TestClient_Downloads проверяет GET запросы снапшотов с bearer токеном
func TestClient_Downloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/api/v1/permissions":
			_ = json.NewEncoder(w).Encode(models.Permissions{Grants: []string{models.PermTaskWrite}})
		case "/api/v1/inventory":
			_ = json.NewEncoder(w).Encode(models.Inventory{Items: []models.InventoryItem{{PointID: "pt-1", MaterialID: "mat-pet", Quantity: 3}}})
		case "/api/v1/masterdata":
			_ = json.NewEncoder(w).Encode(models.MasterData{Materials: []models.CatalogItem{{ID: "mat-pet", Name: "PET"}}})
		case "/api/v1/operation":
			_ = json.NewEncoder(w).Encode(models.Operation{Processes: []models.Process{{ID: "p1", StatusID: models.StatusPending}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	perms, err := client.GetPermissions(ctx, "token-abc")
	require.NoError(t, err)
	assert.True(t, perms.Allows(models.PermTaskWrite))

	inv, err := client.GetInventory(ctx, "token-abc")
	require.NoError(t, err)
	assert.Len(t, inv.Items, 1)

	md, err := client.GetMasterData(ctx, "token-abc")
	require.NoError(t, err)
	assert.True(t, md.HasMaterial("mat-pet"))

	op, err := client.GetOperation(ctx, "token-abc")
	require.NoError(t, err)
	require.Len(t, op.Processes, 1)
	assert.Equal(t, "p1", op.Processes[0].ID)
}

// TestClient_SendMessage проверяет отправку мутации
func TestClient_SendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		var msg models.PendingMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "msg-1", msg.ID)
		assert.Equal(t, models.EntityTask, msg.Entity)

		_ = json.NewEncoder(w).Encode(api.MessageResponse{ID: msg.ID})
	}))
	defer server.Close()

	msg := &models.PendingMessage{
		ID:       "msg-1",
		Entity:   models.EntityTask,
		CRUD:     models.CRUDCreate,
		CRUDDate: time.Now().UTC(),
		Payload:  json.RawMessage(`{"id":"t1"}`),
	}

	resp, err := NewClient(server.URL).SendMessage(context.Background(), "token-abc", msg)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", resp.ID)
	assert.False(t, resp.Duplicate)
}

// TestClient_Logout проверяет пустой ответ 204
func TestClient_Logout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).Logout(context.Background(), "token-abc"))
}

// TestClient_Refresh проверяет передачу refresh token в заголовке
func TestClient_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer refresh-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 900})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", resp.AccessToken)
	assert.Equal(t, "refresh-2", resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

// TestClient_ContextCancellation проверяет отмену запроса
func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).GetOperation(ctx, "token")
	assert.Error(t, err)
}

// TestClient_InvalidJSON проверяет ошибку декодирования ответа
func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetInventory(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

// TestClient_Health проверяет health check
func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).Health(context.Background()))
	assert.Error(t, NewClient("http://127.0.0.1:1").Health(context.Background()))
}
