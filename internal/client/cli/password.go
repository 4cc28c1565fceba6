package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// PasswordEnv is the environment variable holding the password
const PasswordEnv = "WASTETRACK_PASSWORD"

// getPassword возвращает пароль из источников по приоритету:
// 1. переменная окружения WASTETRACK_PASSWORD
// 2. файл из --password-file
// 3. параметр --password
// 4. интерактивный ввод
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.flags.passwordFile != "" {
		content, err := afero.ReadFile(c.fs, c.flags.passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	if c.flags.password != "" {
		return c.flags.password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}
