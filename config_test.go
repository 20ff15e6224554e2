package dataflash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.yaml")
	data := []byte("port: SPI0.0\ncs: GPIO8\nwp: GPIO7\nclock_mhz: 20\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() err=%v", err)
	}
	if cfg.Port != "SPI0.0" || cfg.CS != "GPIO8" || cfg.WP != "GPIO7" || cfg.ClockMHz != 20 {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
}

func TestLoadConfigDefaultClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.yaml")
	if err := os.WriteFile(path, []byte("cs: GPIO8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() err=%v", err)
	}
	if cfg.ClockMHz != defaultClockMHz {
		t.Errorf("ClockMHz = %d, want default %d", cfg.ClockMHz, defaultClockMHz)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok", cfg: Config{CS: "GPIO8", ClockMHz: 40}},
		{name: "missing cs", cfg: Config{ClockMHz: 40}, wantErr: true},
		{name: "clock too fast", cfg: Config{CS: "GPIO8", ClockMHz: 200}, wantErr: true},
		{name: "negative clock", cfg: Config{CS: "GPIO8", ClockMHz: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.yaml")
	if err := os.WriteFile(path, []byte("cs: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted malformed YAML")
	}
}
