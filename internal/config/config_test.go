package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gemscreen.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

const minimalConfig = `
run:
  save_dir: /data/screens
  save_dir_name: gem_test
  plate_map: plate.yaml
`

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, minimalConfig)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.Server.PollInterval)
	}
	if cfg.Server.CompletionTimeout != 600*time.Second {
		t.Errorf("CompletionTimeout = %v, want 600s", cfg.Server.CompletionTimeout)
	}
	if cfg.Server.Size != 7 || cfg.Server.Diameter != 40 {
		t.Errorf("server job defaults = size %d diameter %v", cfg.Server.Size, cfg.Server.Diameter)
	}
	if cfg.Stim.TrueCellThreshold != 50 || cfg.Stim.ErosionFactor != 3 || cfg.Stim.CropSize != 251 {
		t.Errorf("stim defaults = %+v", cfg.Stim)
	}
	if cfg.Server.TrackStitchThreshold != 0.75 {
		t.Errorf("TrackStitchThreshold = %v, want 0.75", cfg.Server.TrackStitchThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := writeConfig(t, minimalConfig+`
server:
  base_url: http://10.114.104.21:8000
  poll_interval: 250ms
measure:
  do_refseg: true
  refseg_preset:
    optical_configuration: iRed
    intensity: 5
    exposure_ms: 200
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.BaseURL != "http://10.114.104.21:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Server.PollInterval)
	}
	if !cfg.Measure.DoRefseg || cfg.Measure.RefsegPreset.OpticalConfiguration != "iRed" {
		t.Errorf("refseg settings = %+v", cfg.Measure)
	}
}

func TestLoadRejectsMissingRunSection(t *testing.T) {
	dir := writeConfig(t, "server:\n  sigma: 0\n")
	if _, err := Load(dir); err == nil {
		t.Fatal("Load() accepted a config without the run section")
	}
}

func TestLoadRejectsRefsegWithoutPreset(t *testing.T) {
	dir := writeConfig(t, minimalConfig+`
measure:
  do_refseg: true
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("Load() accepted refseg without a refseg preset")
	}
}
