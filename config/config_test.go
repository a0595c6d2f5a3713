package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata-does-not-exist.env")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.MeiliIndex != "catalog" || cfg.ImageURLPrefix != "/images" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ShowAllLocal || cfg.ImageReadyOnly {
		t.Error("policy switches must default to off")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata-does-not-exist.env")
	t.Setenv("SHOW_ALL_LOCAL", "true")
	t.Setenv("IMAGE_READY_ONLY", "1")
	t.Setenv("IMAGE_REFRESH_INTERVAL", "30s")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DEFAULT_PAGE_LIMIT", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.ShowAllLocal || !cfg.ImageReadyOnly {
		t.Error("bool overrides not applied")
	}
	if cfg.ImageRefreshInterval != 30*time.Second || cfg.DBMaxConns != 8 || cfg.RateLimitRPS != 2.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DefaultPageLimit != 24 {
		t.Errorf("invalid int must fall back, got %d", cfg.DefaultPageLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, true},
		{"max below default", func(c *Config) { c.MaxPageLimit = 10 }, true},
		{"min conns above max", func(c *Config) { c.DBMinConns = 50 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{RateLimitRPS: 1, RateLimitBurst: 1, DefaultPageLimit: 24, MaxPageLimit: 100, DBMinConns: 2, DBMaxConns: 20}
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireDB(t *testing.T) {
	if err := (&Config{}).RequireDB(); err == nil {
		t.Error("expected error without DB_DSN")
	}
	if err := (&Config{DBUrl: "postgres://x"}).RequireDB(); err != nil {
		t.Errorf("RequireDB: %v", err)
	}
}
