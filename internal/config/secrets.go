package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Secrets are read from the environment (after .env is loaded) and never from config.yaml.
type Secrets struct {
	KiteAPIKey      string `envconfig:"KITE_API_KEY" required:"false"`
	KiteAccessToken string `envconfig:"KITE_ACCESS_TOKEN" required:"false"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" required:"false"`
}

// LoadSecrets reads credentials from environment variables
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to process secrets: %w", err)
	}
	return &s, nil
}

// HasKite reports whether live Kite historical data can be requested.
func (s *Secrets) HasKite() bool {
	return s.KiteAPIKey != "" && s.KiteAccessToken != ""
}
