package config

import "testing"

func TestParseEnvFillsDefaults(t *testing.T) {
	type cfg struct {
		Path     string `env:"RUNEFORGE_TEST_PATH" envDefault:"data.db"`
		Interval int    `env:"RUNEFORGE_TEST_INTERVAL" envDefault:"300"`
	}

	t.Setenv("RUNEFORGE_TEST_PATH", "")
	t.Setenv("RUNEFORGE_TEST_INTERVAL", "")

	var c cfg
	if err := ParseEnv(&c); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if c.Path != "data.db" {
		t.Fatalf("path default = %q, want data.db", c.Path)
	}
	if c.Interval != 300 {
		t.Fatalf("interval default = %d, want 300", c.Interval)
	}
}

func TestParseEnvReadsOverrides(t *testing.T) {
	type cfg struct {
		Path string `env:"RUNEFORGE_TEST_PATH" envDefault:"data.db"`
	}

	t.Setenv("RUNEFORGE_TEST_PATH", "/tmp/override.db")

	var c cfg
	if err := ParseEnv(&c); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if c.Path != "/tmp/override.db" {
		t.Fatalf("path = %q, want override", c.Path)
	}
}
