package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "CATALOG_PATH", "ALLOWED_ORIGINS", "LOG_FILE_SIZE"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FILE_SIZE", "not-a-number")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Log.LogFileSize != 10 {
		t.Errorf("expected default log file size 10, got %d", cfg.Log.LogFileSize)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_OriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:3000 , ,https://backoffice.example.com")

	cfg := Load()

	want := []string{"http://localhost:3000", "https://backoffice.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.AllowedOrigins)
	}
}
