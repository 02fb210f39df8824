package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MrWong99/voxprobe/pkg/tts/google"
)

// credentialsEnv maps the credential environment variables. A `.env` file in
// the working directory is honoured but never required.
type credentialsEnv struct {
	AccessToken string `envconfig:"GOOGLE_TTS_ACCESS_TOKEN"`
	APIKey      string `envconfig:"GOOGLE_TTS_API_KEY"`
	Project     string `envconfig:"GOOGLE_CLOUD_PROJECT"`
}

// LoadCredentials resolves Google Cloud credentials from the environment.
// Absent credentials are not an error here; the gateway reports
// authentication failure lazily on its first remote call.
func LoadCredentials() (google.Credentials, error) {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	var env credentialsEnv
	if err := envconfig.Process("", &env); err != nil {
		return google.Credentials{}, fmt.Errorf("config: read credentials from environment: %w", err)
	}
	return google.Credentials{
		AccessToken: env.AccessToken,
		APIKey:      env.APIKey,
		Project:     env.Project,
	}, nil
}
