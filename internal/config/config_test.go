package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev defaults", Config{AppMode: "dev", Database: DatabaseConfig{Driver: DriverMySQL}, JWT: JWTConfig{Secret: defaultJWTSecret, RefreshSecret: defaultRefreshSecret}}, false},
		{"dev memory", Config{AppMode: "dev", Database: DatabaseConfig{Driver: DriverMemory}}, false},
		{"unknown driver", Config{AppMode: "dev", Database: DatabaseConfig{Driver: "sqlite"}}, true},
		{"prod default secret", Config{AppMode: "prod", Database: DatabaseConfig{Driver: DriverPostgres}, JWT: JWTConfig{Secret: defaultJWTSecret, RefreshSecret: "r"}}, true},
		{"prod memory", Config{AppMode: "prod", Database: DatabaseConfig{Driver: DriverMemory}, JWT: JWTConfig{Secret: "a", RefreshSecret: "b"}}, true},
		{"prod ok", Config{AppMode: "prod", Database: DatabaseConfig{Driver: DriverPostgres}, JWT: JWTConfig{Secret: "a", RefreshSecret: "b"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadsModePrefixedSettings(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PROD_DB_HOST", "db.internal")
	t.Setenv("PROD_JWT_SECRET", "s1")
	t.Setenv("PROD_JWT_REFRESH_SECRET", "s2")
	t.Setenv("INITIAL_YEAR", "2026")
	t.Setenv("AUTH_RATE_LIMIT_PER_MIN", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != "5432" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.InitialYear != 2026 || !cfg.IsProd() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RateLimit.Auth != 0 {
		t.Errorf("auth limit = %d, want disabled", cfg.RateLimit.Auth)
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error")
	}
}
