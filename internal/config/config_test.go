package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("store driver = %q", cfg.Store.Driver)
	}
	if cfg.Chat.HistoryLimit != 50 {
		t.Fatalf("history limit = %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Reaper.Interval != 5*time.Minute || cfg.Reaper.Threshold != 5*time.Minute {
		t.Fatalf("reaper = %+v", cfg.Reaper)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping period = %v", cfg.PingPeriod)
	}
}
