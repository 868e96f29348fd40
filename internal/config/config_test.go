package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
link:
  url: kcp://10.0.0.2:9002
  grace_period: 500ms
  side: blue
input:
  precision_factor: 2
table:
  travel: [1, 2, 3, 4]
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Link.URL != "kcp://10.0.0.2:9002" {
		t.Errorf("url = %s", cfg.Link.URL)
	}
	if cfg.Link.GracePeriod != 500*time.Millisecond {
		t.Errorf("grace = %v", cfg.Link.GracePeriod)
	}
	if cfg.Input.PrecisionFactor != 2 {
		t.Errorf("precision = %v", cfg.Input.PrecisionFactor)
	}
	if cfg.Input.LinearSpeed != 0.1 {
		t.Errorf("linear speed default lost: %v", cfg.Input.LinearSpeed)
	}
	if got := cfg.CoreTable().Travel; got != [4]float64{1, 2, 3, 4} {
		t.Errorf("travel = %v", got)
	}
	if cfg.Side().String() != "blue" {
		t.Errorf("side = %s", cfg.Side())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOOSBALL_SERVER_URL", "ws://example:1/position")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FOOSBALL_SHOT_IMPULSE", "-1.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Link.URL != "ws://example:1/position" {
		t.Errorf("url = %s", cfg.Link.URL)
	}
	if cfg.Auth.Secret != "s3cret" {
		t.Errorf("secret = %q", cfg.Auth.Secret)
	}
	if cfg.Input.ShotImpulse != -1.5 {
		t.Errorf("shot impulse = %v", cfg.Input.ShotImpulse)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"travel count":  "table:\n  travel: [1, 2]\n",
		"zero travel":   "table:\n  travel: [1, 0, 1, 1]\n",
		"bad side":      "link:\n  side: green\n",
		"zero factor":   "input:\n  precision_factor: 0\n",
		"deadzone >= 1": "input:\n  axis_deadzone: 1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
