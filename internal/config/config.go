package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix               = "AEXSITE"
	defaultHTTPAddress      = "0.0.0.0:8080"
	defaultDatabasePath     = "aexsite.db"
	defaultLogLevel         = "info"
	defaultSiteURL          = "https://aex.design"
	defaultSiteName         = "Aex Designs"
	defaultNotionAPIURL     = "https://api.notion.com/v1"
	defaultRouteMapPath     = "content/route-map.json"
	defaultHiddenSuffix     = "-type-tester"
	defaultCacheTTLSeconds  = 300
	defaultRefreshTimeout   = 30 * time.Second
	defaultFetchConcurrency = 6
	defaultFetchMaxDepth    = 32
	RouteStoreFile          = "file"
	RouteStoreSQLite        = "sqlite"
)

var (
	defaultHostnames         = []string{"aex.design", "www.aex.design"}
	defaultExpandableParents = []string{"onchain", "offchain", "digitaldesignassets", "archive"}

	ErrInvalidRouteStore = errors.New("config: routes.store must be file or sqlite")
	ErrInvalidSiteURL    = errors.New("config: site.url must be an absolute http(s) url")
)

// legacyEnv lists the environment names the site was first deployed with. They are
// consulted after the prefixed names.
var legacyEnv = map[string]string{
	"notion.token":                "NOTION_TOKEN",
	"notion.database_id":          "NOTION_DATABASE_ID",
	"notion.home_page_id":         "NOTION_HOME_PAGE_ID",
	"notion.slug_property":        "NOTION_SLUG_PROPERTY",
	"notion.published_property":   "NOTION_PUBLISHED_PROPERTY",
	"notion.description_property": "NOTION_DESCRIPTION_PROPERTY",
	"cache.ttl_seconds":           "NOTION_CACHE_TTL_SECONDS",
	"revalidate.secret":           "NOTION_REVALIDATE_SECRET",
	"site.url":                    "SITE_URL",
}

// AppConfig captures runtime configuration for the site server and tooling.
type AppConfig struct {
	HTTPAddress    string
	AllowedOrigins []string
	LogLevel       string

	SiteURL   string
	SiteName  string
	Hostnames []string

	NotionToken         string
	NotionAPIURL        string
	DatabaseID          string
	HomePageID          string
	SlugProperty        string
	PublishedProperty   string
	DescriptionProperty string

	CacheTTL         time.Duration
	RefreshTimeout   time.Duration
	FetchConcurrency int
	FetchMaxDepth    int

	RouteStore        string
	RouteMapPath      string
	WatchRouteMap     bool
	HiddenSuffix      string
	ExpandableParents []string
	DatabasePath      string

	RevalidateSecret string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	for key, legacyName := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = configViper.BindEnv(key, prefixed, legacyName)
	}

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.allowed_origins", []string{})
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("site.url", defaultSiteURL)
	configViper.SetDefault("site.name", defaultSiteName)
	configViper.SetDefault("notion.api_url", defaultNotionAPIURL)
	configViper.SetDefault("cache.ttl_seconds", strconv.Itoa(defaultCacheTTLSeconds))
	configViper.SetDefault("cache.refresh_timeout", defaultRefreshTimeout)
	configViper.SetDefault("fetch.concurrency", defaultFetchConcurrency)
	configViper.SetDefault("fetch.max_depth", defaultFetchMaxDepth)
	configViper.SetDefault("routes.store", RouteStoreFile)
	configViper.SetDefault("routes.map_path", defaultRouteMapPath)
	configViper.SetDefault("routes.watch", true)
	configViper.SetDefault("routes.hidden_suffix", defaultHiddenSuffix)
	configViper.SetDefault("routes.expandable_parents", defaultExpandableParents)
	configViper.SetDefault("database.path", defaultDatabasePath)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:         strings.TrimSpace(configViper.GetString("http.address")),
		AllowedOrigins:      splitList(configViper.GetStringSlice("http.allowed_origins")),
		LogLevel:            configViper.GetString("log.level"),
		SiteURL:             strings.TrimRight(strings.TrimSpace(configViper.GetString("site.url")), "/"),
		SiteName:            strings.TrimSpace(configViper.GetString("site.name")),
		Hostnames:           splitList(configViper.GetStringSlice("site.hostnames")),
		NotionToken:         strings.TrimSpace(configViper.GetString("notion.token")),
		NotionAPIURL:        strings.TrimSpace(configViper.GetString("notion.api_url")),
		DatabaseID:          strings.TrimSpace(configViper.GetString("notion.database_id")),
		HomePageID:          strings.TrimSpace(configViper.GetString("notion.home_page_id")),
		SlugProperty:        strings.TrimSpace(configViper.GetString("notion.slug_property")),
		PublishedProperty:   strings.TrimSpace(configViper.GetString("notion.published_property")),
		DescriptionProperty: strings.TrimSpace(configViper.GetString("notion.description_property")),
		CacheTTL:            parseCacheTTL(configViper.GetString("cache.ttl_seconds")),
		RefreshTimeout:      configViper.GetDuration("cache.refresh_timeout"),
		FetchConcurrency:    configViper.GetInt("fetch.concurrency"),
		FetchMaxDepth:       configViper.GetInt("fetch.max_depth"),
		RouteStore:          strings.ToLower(strings.TrimSpace(configViper.GetString("routes.store"))),
		RouteMapPath:        strings.TrimSpace(configViper.GetString("routes.map_path")),
		WatchRouteMap:       configViper.GetBool("routes.watch"),
		HiddenSuffix:        strings.TrimSpace(configViper.GetString("routes.hidden_suffix")),
		ExpandableParents:   splitList(configViper.GetStringSlice("routes.expandable_parents")),
		DatabasePath:        strings.TrimSpace(configViper.GetString("database.path")),
		RevalidateSecret:    strings.TrimSpace(configViper.GetString("revalidate.secret")),
	}
	if len(cfg.Hostnames) == 0 {
		cfg.Hostnames = hostnamesFor(cfg.SiteURL)
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.HTTPAddress == "" {
		return fmt.Errorf("http.address is required")
	}
	parsed, err := url.Parse(c.SiteURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSiteURL, c.SiteURL)
	}
	switch c.RouteStore {
	case RouteStoreFile:
		if c.RouteMapPath == "" {
			return fmt.Errorf("routes.map_path is required for the file route store")
		}
	case RouteStoreSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("database.path is required for the sqlite route store")
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRouteStore, c.RouteStore)
	}
	return nil
}

// parseCacheTTL reads a whole number of seconds. Negative or unparsable values fall
// back to the default; zero disables caching.
func parseCacheTTL(raw string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds < 0 {
		seconds = defaultCacheTTLSeconds
	}
	return time.Duration(seconds) * time.Second
}

// splitList accepts both list values and comma separated strings from the environment.
func splitList(values []string) []string {
	var items []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}

func hostnamesFor(siteURL string) []string {
	parsed, err := url.Parse(siteURL)
	if err != nil || parsed.Hostname() == "" {
		return defaultHostnames
	}
	host := strings.ToLower(parsed.Hostname())
	if strings.HasPrefix(host, "www.") {
		return []string{host, strings.TrimPrefix(host, "www.")}
	}
	return []string{host, "www." + host}
}
