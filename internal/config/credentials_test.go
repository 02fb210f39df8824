package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MrWong99/voxprobe/internal/config"
)

// clearCredentialEnv unsets the credential variables for the duration of the
// test, restoring whatever the host environment had afterwards.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GOOGLE_TTS_ACCESS_TOKEN", "GOOGLE_TTS_API_KEY", "GOOGLE_CLOUD_PROJECT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadCredentials_ReadsEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_TTS_ACCESS_TOKEN", "ya29.test-token")
	t.Setenv("GOOGLE_TTS_API_KEY", "AIza-test-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")

	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.AccessToken != "ya29.test-token" {
		t.Errorf("AccessToken = %q", creds.AccessToken)
	}
	if creds.APIKey != "AIza-test-key" {
		t.Errorf("APIKey = %q", creds.APIKey)
	}
	if creds.Project != "demo-project" {
		t.Errorf("Project = %q", creds.Project)
	}
}

func TestLoadCredentials_AbsentIsNotAnError(t *testing.T) {
	clearCredentialEnv(t)

	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.AccessToken != "" || creds.APIKey != "" || creds.Project != "" {
		t.Errorf("credentials = %+v, want all empty", creds)
	}
}

func TestLoadCredentials_HonoursDotEnvFile(t *testing.T) {
	clearCredentialEnv(t)

	dir := t.TempDir()
	env := "GOOGLE_TTS_API_KEY=from-dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.APIKey != "from-dotenv" {
		t.Errorf("APIKey = %q, want the .env value", creds.APIKey)
	}
}

func TestLoadCredentials_EnvironmentBeatsDotEnv(t *testing.T) {
	clearCredentialEnv(t)

	dir := t.TempDir()
	env := "GOOGLE_TTS_API_KEY=from-dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("GOOGLE_TTS_API_KEY", "from-environment")

	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.APIKey != "from-environment" {
		t.Errorf("APIKey = %q, want the environment to win", creds.APIKey)
	}
}
