package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.BoostReferralThreshold != 3 {
		t.Errorf("BoostReferralThreshold = %d, want 3", cfg.BoostReferralThreshold)
	}
	if cfg.BoostWindow != 30*24*time.Hour {
		t.Errorf("BoostWindow = %v, want 720h", cfg.BoostWindow)
	}
	if cfg.DispatchWorkers <= 0 || cfg.DispatchQueueSize <= 0 {
		t.Errorf("dispatcher defaults = %d workers / %d queue, want > 0", cfg.DispatchWorkers, cfg.DispatchQueueSize)
	}
	if len(cfg.Brokers()) != 0 {
		t.Errorf("Brokers() = %v, want empty", cfg.Brokers())
	}
}

func TestLoad_EnvFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	env := "JWT_SECRET=from-file\nEMAIL_TOPIC=mail\nBOOST_WINDOW=48h\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DISPATCH_WORKERS", "8")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JWTSecret != "from-file" {
		t.Errorf("JWTSecret = %q, want from-file", cfg.JWTSecret)
	}
	if cfg.EmailTopic != "mail" {
		t.Errorf("EmailTopic = %q, want mail", cfg.EmailTopic)
	}
	if cfg.BoostWindow != 48*time.Hour {
		t.Errorf("BoostWindow = %v, want 48h", cfg.BoostWindow)
	}
	if cfg.DispatchWorkers != 8 {
		t.Errorf("DispatchWorkers = %d, want 8", cfg.DispatchWorkers)
	}
	brokers := cfg.Brokers()
	if len(brokers) != 2 || brokers[0] != "kafka-1:9092" || brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers() = %v, want [kafka-1:9092 kafka-2:9092]", brokers)
	}
}
