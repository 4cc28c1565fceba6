// Package auth регистрирует пользователя и сохраняет сессию на устройстве.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/validation"
	"github.com/iudanet/wastetrack/pkg/api"
)

//go:generate moq -out api_mock.go . APIClient

// APIClient is the auth part of the remote API.
type APIClient interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
}

var (
	// ErrAlreadyLoggedIn возвращается при попытке логина поверх существующей сессии
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrNotLoggedIn возвращается, если сессия не сохранена
	ErrNotLoggedIn = errors.New("not logged in")
)

// Service предоставляет функции авторизации
type Service struct {
	apiClient APIClient
	store     storage.Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Register регистрирует нового пользователя. Сессия не создается.
func (s *Service) Register(ctx context.Context, username, email, password string) (*api.RegisterResponse, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	resp, err := s.apiClient.Register(ctx, api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info("User registered", "user", username, "user_id", resp.UserID)
	return resp, nil
}

// Login выполняет аутентификацию и сохраняет Session и Account.
// Поверх существующей сессии логин запрещен: сначала End или ForceQuit.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	current, err := s.Session(ctx)
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return nil, err
	}
	if current != nil {
		return nil, ErrAlreadyLoggedIn
	}

	resp, err := s.apiClient.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := s.applyTokens(&models.Session{UserName: username}, resp)
	if resp.Email != "" {
		email := resp.Email
		session.Email = &email
	}

	if err := s.store.Set(ctx, storage.KeySession, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	account := models.Account{UserID: resp.UserID, UserName: username, Email: resp.Email}
	if err := s.store.Set(ctx, storage.KeyAccount, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Logged in", "user", username)
	return session, nil
}

// RefreshToken обновляет пару токенов и перезаписывает сессию
func (s *Service) RefreshToken(ctx context.Context) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}

	resp, err := s.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", "error", err)
		return fmt.Errorf("refresh failed: %w", err)
	}

	if err := s.store.Set(ctx, storage.KeySession, s.applyTokens(session, resp)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Session возвращает сохраненную сессию или ErrNotLoggedIn
func (s *Service) Session(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if err := s.store.Get(ctx, storage.KeySession, &session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !session.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return &session, nil
}

// Account возвращает учетную запись владельца сессии
func (s *Service) Account(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := s.store.Get(ctx, storage.KeyAccount, &account); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	return &account, nil
}

func (s *Service) applyTokens(session *models.Session, resp *api.TokenResponse) *models.Session {
	session.AccessToken = resp.AccessToken
	session.RefreshToken = resp.RefreshToken
	if resp.ExpiresIn > 0 {
		expires := s.now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
		session.EndDate = &expires
	}
	return session
}
