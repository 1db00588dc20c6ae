package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsToSpreadsheetStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "spreadsheet")
	t.Setenv("BASE_WORKBOOK", "base.xlsx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetStoreDriver() != StoreDriverSpreadsheet {
		t.Fatalf("expected spreadsheet driver, got %q", cfg.GetStoreDriver())
	}
	if cfg.GetBaseWorkbook() != "base.xlsx" {
		t.Fatalf("expected base.xlsx, got %q", cfg.GetBaseWorkbook())
	}
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadClientParsesTimers(t *testing.T) {
	t.Setenv("CEP_API_URL", "http://cep.local:9000/")
	t.Setenv("CEP_LOADING_DELAY", "50ms")
	t.Setenv("CEP_COPY_RESET_DELAY", "1s")
	t.Setenv("CEP_DISCARD_FORM_ON_SAVE_ERROR", "TRUE")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient returned error: %v", err)
	}
	if cfg.GetAPIBaseURL() != "http://cep.local:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.GetAPIBaseURL())
	}
	if cfg.GetLoadingDelay() != 50*time.Millisecond {
		t.Fatalf("unexpected loading delay %v", cfg.GetLoadingDelay())
	}
	if cfg.GetCopyResetDelay() != time.Second {
		t.Fatalf("unexpected copy reset delay %v", cfg.GetCopyResetDelay())
	}
	if !cfg.GetDiscardFormOnSaveError() {
		t.Fatal("expected legacy save error mode to be enabled")
	}
}

func TestWildcardOriginEnablesAllowAll(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.example, *")
	t.Setenv("CORS_ALLOW_ALL", "false")

	cfg := load()
	if !cfg.GetCORSAllowAll() {
		t.Fatal("expected wildcard origin to enable allow-all")
	}
}
