package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.FocusMinutes != 25 || cfg.BreakMinutes != 5 {
		t.Errorf("focus/break = %d/%d, want 25/5", cfg.FocusMinutes, cfg.BreakMinutes)
	}
	if cfg.APITimeout() != 15*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout())
	}
	if cfg.RefreshInterval() != 30*time.Minute {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval())
	}
	if !errors.Is(cfg.Validate(), ErrNoToken) {
		t.Errorf("Validate without token = %v", cfg.Validate())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifegoals.yaml")
	data := "telegram_token: file-token\nfocus_minutes: 50\nbreak_minutes: 0\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(FileEnv, path)
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("FOCUS_MINUTES", "")
	t.Setenv("BREAK_MINUTES", "nope")
	t.Setenv("REPORT_TIME", "21:15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramToken != "file-token" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
	if cfg.FocusMinutes != 50 {
		t.Errorf("FocusMinutes = %d, want 50", cfg.FocusMinutes)
	}
	if cfg.BreakMinutes != 5 {
		t.Errorf("BreakMinutes = %d, want default 5", cfg.BreakMinutes)
	}
	if cfg.ReportTime != "21:15" {
		t.Errorf("ReportTime = %q", cfg.ReportTime)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	t.Setenv("FOCUS_MINUTES", "45")
	cfg, _ = Load()
	if cfg.FocusMinutes != 45 {
		t.Errorf("env override FocusMinutes = %d, want 45", cfg.FocusMinutes)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("focus_minutes: [1"), 0o644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:45")
	if err != nil || h != 7 || m != 45 {
		t.Errorf("ParseClock = %d, %d, %v", h, m, err)
	}
	if _, _, err := ParseClock("7pm"); err == nil {
		t.Error("expected error for 7pm")
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("Location = %v, %v", loc, err)
	}
	cfg.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
