package models

import "time"

// Session представляет текущую сессию пользователя на устройстве.
// Создается при логине и удаляется при End/ForceQuit.
type Session struct {
	StartDate        *time.Time `json:"start_date,omitempty"`        // StartDate время входа
	EndDate          *time.Time `json:"end_date,omitempty"`          // EndDate время истечения access token
	Email            *string    `json:"email,omitempty"`             // Email опциональный email пользователя
	VerificationCode *string    `json:"verification_code,omitempty"` // VerificationCode код подтверждения (если выдан сервером)
	AccessToken      string     `json:"access_token"`                // AccessToken JWT access token
	RefreshToken     string     `json:"refresh_token"`               // RefreshToken refresh token
	UserName         string     `json:"user_name"`                   // UserName логин пользователя
}

// LoggedIn reports whether the session carries an access token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.AccessToken != ""
}

// Account описывает учетную запись владельца сессии.
type Account struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email,omitempty"`
}

// SyncMeta хранит сведения о последней успешной синхронизации.
type SyncMeta struct {
	LastSync time.Time `json:"last_sync"`
}
