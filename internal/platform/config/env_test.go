package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	MaxSides int    `env:"TEST_MAX_SIDES" envDefault:"123"`
	Locale   string `env:"TEST_LOCALE"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.MaxSides != 123 {
		t.Fatalf("expected default max sides 123, got %d", cfg.MaxSides)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	t.Setenv("TEST_LOCALE", "de-DE")
	t.Setenv("KOBOLD_KEEPER_TEST_LOCALE", "pt-BR")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected prefixed locale pt-BR, got %q", cfg.Locale)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("KOBOLD_KEEPER_TEST_MAX_SIDES", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
