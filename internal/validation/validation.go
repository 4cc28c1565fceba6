// Package validation содержит проверки пользовательского ввода,
// общие для клиента и сервера.
package validation

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"
)

// UsernamePattern определяет допустимый формат логина водителя/оператора:
// латинские буквы, цифры, точка, дефис и подчеркивание
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxQuantity верхняя граница количества в одной строке задачи
	MaxQuantity = 1_000_000
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// ValidateUsername проверяет длину и набор символов username
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: cannot be empty", ErrInvalidUsername)
	case len(username) < MinUsernameLen:
		return fmt.Errorf("%w: must be at least %d characters long", ErrInvalidUsername, MinUsernameLen)
	case len(username) > MaxUsernameLen:
		return fmt.Errorf("%w: must not exceed %d characters", ErrInvalidUsername, MaxUsernameLen)
	case !UsernamePattern.MatchString(username):
		return fmt.Errorf("%w: only letters, digits, '.', '-' and '_' are allowed", ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword проверяет минимальную длину пароля (в символах, не байтах)
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidPassword)
	}
	if len([]rune(password)) < MinPasswordLen {
		return fmt.Errorf("%w: must be at least %d characters long", ErrInvalidPassword, MinPasswordLen)
	}
	return nil
}

// ValidateEmail проверяет email; пустая строка допустима (поле опционально)
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateQuantity проверяет количество материала в задаче
func ValidateQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("%w: not a number", ErrInvalidQuantity)
	}
	if q <= 0 {
		return fmt.Errorf("%w: must be positive", ErrInvalidQuantity)
	}
	if q > MaxQuantity {
		return fmt.Errorf("%w: must not exceed %d", ErrInvalidQuantity, MaxQuantity)
	}
	return nil
}
