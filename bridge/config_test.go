package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
side_a:
  endpoint: voip.example.com:5060
  identity: user@example.com
side_b:
  token: abc123
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SideAEndpoint != "voip.example.com:5060" {
		t.Errorf("SideAEndpoint = %q", cfg.SideAEndpoint)
	}
	if cfg.Volume != defaultVolume {
		t.Errorf("Volume = %v, want default %v", cfg.Volume, defaultVolume)
	}
	if cfg.Verbose != 0 {
		t.Errorf("Verbose = %v, want 0", cfg.Verbose)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
side_a:
  endpoint: voip.example.com:5060
  identity: user@example.com
  channel_id: 42
  channel_name: lobby
side_b:
  token: abc123
verbose: 2
volume: 0.5
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SideAChannelID != 42 {
		t.Errorf("SideAChannelID = %v", cfg.SideAChannelID)
	}
	if cfg.SideAChannelName != "lobby" {
		t.Errorf("SideAChannelName = %q", cfg.SideAChannelName)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %v", cfg.Verbose)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %v", cfg.Volume)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing endpoint", "side_a:\n  identity: x\nside_b:\n  token: y\n"},
		{"missing identity", "side_a:\n  endpoint: x\nside_b:\n  token: y\n"},
		{"missing token", "side_a:\n  endpoint: x\n  identity: y\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.yaml)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
