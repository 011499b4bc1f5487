package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.CacheTTL != 300*time.Second {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL)
	}
	if cfg.RouteStore != RouteStoreFile || cfg.RouteMapPath != defaultRouteMapPath {
		t.Fatalf("unexpected route store %q %q", cfg.RouteStore, cfg.RouteMapPath)
	}
	if len(cfg.Hostnames) != 2 || cfg.Hostnames[0] != "aex.design" {
		t.Fatalf("unexpected hostnames %v", cfg.Hostnames)
	}
	if cfg.FetchConcurrency != defaultFetchConcurrency || cfg.FetchMaxDepth != defaultFetchMaxDepth {
		t.Fatalf("unexpected fetch settings %d %d", cfg.FetchConcurrency, cfg.FetchMaxDepth)
	}
	if !cfg.WatchRouteMap {
		t.Fatalf("expected route map watching to default on")
	}
}

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("AEXSITE_NOTION_TOKEN", "prefixed-token")
	t.Setenv("NOTION_TOKEN", "legacy-token")
	t.Setenv("AEXSITE_ROUTES_STORE", "SQLite")
	t.Setenv("AEXSITE_SITE_HOSTNAMES", "example.com, www.example.com")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NotionToken != "prefixed-token" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.NotionToken)
	}
	if cfg.RouteStore != RouteStoreSQLite {
		t.Fatalf("unexpected route store %q", cfg.RouteStore)
	}
	if len(cfg.Hostnames) != 2 || cfg.Hostnames[1] != "www.example.com" {
		t.Fatalf("unexpected hostnames %v", cfg.Hostnames)
	}
}

func TestLoadReadsLegacyEnvironment(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "legacy-token")
	t.Setenv("NOTION_DATABASE_ID", "db-id")
	t.Setenv("NOTION_REVALIDATE_SECRET", "legacy-secret")
	t.Setenv("NOTION_CACHE_TTL_SECONDS", "0")
	t.Setenv("SITE_URL", "https://staging.example.com/")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NotionToken != "legacy-token" || cfg.DatabaseID != "db-id" || cfg.RevalidateSecret != "legacy-secret" {
		t.Fatalf("legacy values not loaded: %#v", cfg)
	}
	if cfg.CacheTTL != 0 {
		t.Fatalf("expected zero ttl to disable caching, got %v", cfg.CacheTTL)
	}
	if cfg.SiteURL != "https://staging.example.com" {
		t.Fatalf("unexpected site url %q", cfg.SiteURL)
	}
	if len(cfg.Hostnames) != 2 || cfg.Hostnames[0] != "staging.example.com" {
		t.Fatalf("expected hostnames derived from site url, got %v", cfg.Hostnames)
	}
}

func TestParseCacheTTLFallsBack(t *testing.T) {
	for _, raw := range []string{"-5", "soon", ""} {
		if got := parseCacheTTL(raw); got != 300*time.Second {
			t.Fatalf("parseCacheTTL(%q) = %v", raw, got)
		}
	}
	if got := parseCacheTTL("60"); got != time.Minute {
		t.Fatalf("unexpected ttl %v", got)
	}
}

func TestLoadValidates(t *testing.T) {
	t.Run("route store", func(t *testing.T) {
		configViper := NewViper()
		configViper.Set("routes.store", "redis")
		if _, err := Load(configViper); !errors.Is(err, ErrInvalidRouteStore) {
			t.Fatalf("expected ErrInvalidRouteStore, got %v", err)
		}
	})
	t.Run("site url", func(t *testing.T) {
		configViper := NewViper()
		configViper.Set("site.url", "aex.design")
		if _, err := Load(configViper); !errors.Is(err, ErrInvalidSiteURL) {
			t.Fatalf("expected ErrInvalidSiteURL, got %v", err)
		}
	})
}
