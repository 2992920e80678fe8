package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRAK_API_URL", "")
	t.Setenv("TRAK_LOG_FILE", "")
	t.Setenv("TRAK_PAGE_SIZE", "")

	cfg := Load()
	if cfg.APIBaseURL != DefaultBaseURL {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d", cfg.PageSize)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TRAK_API_URL", "https://api.example.com/v1")
	t.Setenv("TRAK_LOG_FILE", "/tmp/trak.log")
	t.Setenv("TRAK_PAGE_SIZE", "25")

	cfg := Load()
	if cfg.APIBaseURL != "https://api.example.com/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LogFile != "/tmp/trak.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d", cfg.PageSize)
	}
}

func TestLoad_BadPageSize(t *testing.T) {
	for _, bad := range []string{"abc", "0", "-3"} {
		t.Setenv("TRAK_PAGE_SIZE", bad)
		if got := Load().PageSize; got != DefaultPageSize {
			t.Errorf("PageSize with %q = %d, expected default", bad, got)
		}
	}
}
