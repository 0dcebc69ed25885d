package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Check(); err != nil {
		t.Fatalf("defaults fail validation: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *DefaultConfig() {
		t.Error("empty path did not yield defaults")
	}
}

func TestLoadPartialFileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `{"columns": 16, "rows": 12, "seed": 7}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Columns != 16 || cfg.Rows != 12 || cfg.Seed != 7 {
		t.Errorf("overrides not applied: %dx%d seed %d", cfg.Columns, cfg.Rows, cfg.Seed)
	}
	def := DefaultConfig()
	if cfg.WorkerLifespan != def.WorkerLifespan || cfg.EntranceSide != def.EntranceSide {
		t.Error("untouched fields lost their defaults")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown side":     `{"entranceSide": "diagonal"}`,
		"grid too small":   `{"columns": 2, "rows": 2}`,
		"zero entrances":   `{"entranceCount": 0}`,
		"bad full ratio":   `{"storageFullRatio": 1.5}`,
		"negative speed":   `{"movementSpeed": -1}`,
		"not json at all":  `columns = 16`,
		"wrong value type": `{"columns": "wide"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Errorf("accepted %s", body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestCheckSides(t *testing.T) {
	for _, side := range []string{"top", "bottom", "left", "right"} {
		cfg := DefaultConfig()
		cfg.EntranceSide = side
		if err := cfg.Check(); err != nil {
			t.Errorf("side %q rejected: %v", side, err)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
