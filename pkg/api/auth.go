package api

import "errors"

// ErrUnauthorized означает, что сервер отклонил токен (HTTP 401)
var ErrUnauthorized = errors.New("unauthorized")

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"`        // username пользователя
	Email    string `json:"email,omitempty"` // email (опционально)
	Password string `json:"password"`        // пароль, на сервере хранится только bcrypt хеш
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"` // UUID пользователя
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`    // JWT access token
	RefreshToken string `json:"refresh_token"`   // refresh token
	UserID       string `json:"user_id"`         // UUID пользователя
	Email        string `json:"email,omitempty"` // email пользователя
	ExpiresIn    int64  `json:"expires_in"`      // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
