package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables for the remote API.
const (
	EnvAPIURL   = "TYPEROO_API_URL"
	EnvAPIToken = "TYPEROO_API_TOKEN"
)

// LoadEnv loads .env files in order. Missing files are skipped and variables
// already present in the environment are never overwritten.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// API holds remote API credentials.
type API struct {
	URL   string
	Token string
}

// Enabled reports whether results should be sent to the remote API.
func (a API) Enabled() bool {
	return a.URL != ""
}

// ResolveAPI merges the environment over the config file.
func ResolveAPI(file APIConfig) API {
	var api API
	if file.URL != nil {
		api.URL = strings.TrimSpace(*file.URL)
	}
	if file.Token != nil {
		api.Token = strings.TrimSpace(*file.Token)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		api.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
		api.Token = v
	}
	return api
}
