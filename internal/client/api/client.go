package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh токены пользователя на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// GetPermissions скачивает снапшот прав пользователя
func (c *Client) GetPermissions(ctx context.Context, accessToken string) (*models.Permissions, error) {
	var resp models.Permissions
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/permissions", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("permissions request failed: %w", err)
	}
	return &resp, nil
}

// GetInventory скачивает снапшот остатков
func (c *Client) GetInventory(ctx context.Context, accessToken string) (*models.Inventory, error) {
	var resp models.Inventory
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/inventory", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	return &resp, nil
}

// GetMasterData скачивает справочники
func (c *Client) GetMasterData(ctx context.Context, accessToken string) (*models.MasterData, error) {
	var resp models.MasterData
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/masterdata", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("master data request failed: %w", err)
	}
	return &resp, nil
}

// GetOperation скачивает операционный снапшот (рейсы, транзакции, задачи)
func (c *Client) GetOperation(ctx context.Context, accessToken string) (*models.Operation, error) {
	var resp models.Operation
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/operation", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("operation request failed: %w", err)
	}
	return &resp, nil
}

// SendMessage отправляет одну исходящую мутацию
func (c *Client) SendMessage(ctx context.Context, accessToken string, msg *models.PendingMessage) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/messages", accessToken, msg, &resp); err != nil {
		return nil, fmt.Errorf("send message %s failed: %w", msg.ID, err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, nil)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var statusErr error
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			statusErr = fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		} else {
			statusErr = fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", api.ErrUnauthorized, statusErr)
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
