package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type postgresCredentials struct {
	Url string `json:"url"`
}

// Helper function to load the database URL from environment variable or credentials file
func loadDatabaseURL(envVarName, configPath, credentialsPath string) (string, error) {
	if envVarName != "" {
		url := os.Getenv(envVarName)
		if url != "" {
			return url, nil
		}
	}

	if credentialsPath != "" {
		file, err := os.ReadFile(credentialsPath)
		if err != nil && os.IsNotExist(err) {
			// Try fallback - same directory as config file
			configDir := filepath.Dir(configPath)
			credentialsFilename := filepath.Base(credentialsPath)
			fallbackPath := filepath.Join(configDir, credentialsFilename)

			file, err = os.ReadFile(fallbackPath)
			if err != nil {
				return "", err
			}
		} else if err != nil {
			return "", err
		}

		var credentials postgresCredentials
		if err := json.Unmarshal(file, &credentials); err != nil {
			return "", err
		}
		if credentials.Url == "" {
			return "", fmt.Errorf("no url in credentials file %s", credentialsPath)
		}
		return credentials.Url, nil
	}

	return "", fmt.Errorf("no valid database url found")
}
