package logging

import (
	"testing"

	"github.com/picstream/picstream/pkg/config"
)

func TestInitLogger(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "INFO",
		Format: "json",
	}

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if Logger == nil {
		t.Fatal("Expected Logger to be set after InitLogger")
	}

	// Invalid level falls back rather than failing
	cfg.Level = "NOT_A_LEVEL"
	if err := InitLogger(cfg); err != nil {
		t.Errorf("Invalid level should fall back to INFO, got: %v", err)
	}
}

func TestGetLoggerFallback(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	Logger = nil
	if GetLogger() == nil {
		t.Fatal("Expected GetLogger to build a fallback logger")
	}
}

func TestWithComponent(t *testing.T) {
	logger := WithComponent("test-component")
	if logger == nil {
		t.Fatal("Expected component logger")
	}
}
