package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("SERVER_HTTP_PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SPIN_DURATION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.SpinDuration != 3*time.Second {
		t.Errorf("expected default spin duration 3s, got %s", cfg.SpinDuration)
	}
	if cfg.AnswerWindow != 60*time.Second {
		t.Errorf("expected default answer window 60s, got %s", cfg.AnswerWindow)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("unexpected default gemini model: %s", cfg.GeminiModel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("SERVER_HTTP_PORT", "9090")
	os.Setenv("SMTP_HOST", "smtp.example.com")
	os.Setenv("SMTP_PORT", "465")
	defer func() {
		os.Unsetenv("SERVER_HTTP_PORT")
		os.Unsetenv("SMTP_HOST")
		os.Unsetenv("SMTP_PORT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if got := cfg.SMTPAddress(); got != "smtp.example.com:465" {
		t.Errorf("unexpected smtp address: %s", got)
	}
	if got := cfg.HTTPAddress(); got != "0.0.0.0:9090" {
		t.Errorf("unexpected http address: %s", got)
	}
}
