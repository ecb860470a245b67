package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
// Если файла нет, пробует переменную окружения с именем секрета в верхнем
// регистре - удобно для локальной разработки без Docker.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if secret := strings.TrimSpace(os.Getenv(envName)); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("failed to read secret %s: neither %s nor env %s is set", secretName, filePath, envName)
}
