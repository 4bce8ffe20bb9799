// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, cache storage and TTLs, geocoding endpoints and credentials, listing
// aggregation, rate limiting and observability.
package config

import (
	"errors"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-apartment-search")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// CacheConfig defines where and for how long search results are cached.
type CacheConfig struct {
	Backend          string        // CACHE_BACKEND: sqlite|memory
	ResultTTL        time.Duration // SEARCH_CACHE_TTL
	ListingTTL       time.Duration // LISTING_CACHE_TTL
	SweepInterval    time.Duration // CACHE_SWEEP_INTERVAL (0 = startup sweep only)
	RememberListings bool          // REMEMBER_LISTINGS
}

// GeocodeConfig defines the geocoding strategy chain. Credentials are passed
// to the resolver explicitly and never read from the environment elsewhere.
type GeocodeConfig struct {
	ProxyURL     string        // GEOCODE_PROXY_URL (empty disables the proxy strategy)
	ProviderURL  string        // GEOCODE_PROVIDER_URL
	APIKey       string        // GEOCODE_API_KEY (client credential)
	ServerAPIKey string        // GEOCODE_SERVER_API_KEY (falls back to APIKey)
	Timeout      time.Duration // GEOCODE_TIMEOUT per strategy
}

// SearchConfig defines listing aggregation limits.
type SearchConfig struct {
	Sources        []string // LISTING_SOURCES
	PerSource      int      // LISTINGS_PER_SOURCE in [1,50]
	MaxRadiusMiles float64  // MAX_RADIUS_MILES
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path

	// Domain
	Cache   CacheConfig
	Geocode GeocodeConfig
	Search  SearchConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath: getenv("DB_PATH", "app.db"),

		// Cache
		Cache: CacheConfig{
			Backend:          strings.ToLower(strings.TrimSpace(getenv("CACHE_BACKEND", "sqlite"))),
			ResultTTL:        getdur("SEARCH_CACHE_TTL", 30*time.Minute),
			ListingTTL:       getdur("LISTING_CACHE_TTL", 7*24*time.Hour),
			SweepInterval:    getdur("CACHE_SWEEP_INTERVAL", time.Hour),
			RememberListings: getbool("REMEMBER_LISTINGS", true),
		},

		// Geocoding
		Geocode: GeocodeConfig{
			ProxyURL:     strings.TrimSpace(getenv("GEOCODE_PROXY_URL", "")),
			ProviderURL:  strings.TrimSpace(getenv("GEOCODE_PROVIDER_URL", "https://maps.googleapis.com/maps/api/geocode/json")),
			APIKey:       strings.TrimSpace(getenv("GEOCODE_API_KEY", "")),
			ServerAPIKey: strings.TrimSpace(getenv("GEOCODE_SERVER_API_KEY", "")),
			Timeout:      getdur("GEOCODE_TIMEOUT", 5*time.Second),
		},

		// Aggregation
		Search: SearchConfig{
			Sources:        lowerAll(splitCSV(getenv("LISTING_SOURCES", "zillow,realtor,apartments"))),
			PerSource:      getint("LISTINGS_PER_SOURCE", 6),
			MaxRadiusMiles: getfloat("MAX_RADIUS_MILES", 100),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-apartment-search"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Geocode.ServerAPIKey == "" {
		cfg.Geocode.ServerAPIKey = cfg.Geocode.APIKey
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	switch cfg.Cache.Backend {
	case "sqlite", "memory":
	default:
		return cfg, errors.New("CACHE_BACKEND must be one of: sqlite, memory")
	}
	if cfg.Cache.ResultTTL <= 0 || cfg.Cache.ListingTTL <= 0 {
		return cfg, errors.New("SEARCH_CACHE_TTL and LISTING_CACHE_TTL must be > 0")
	}
	if cfg.Cache.SweepInterval < 0 {
		return cfg, errors.New("CACHE_SWEEP_INTERVAL must be >= 0")
	}
	if cfg.Geocode.Timeout <= 0 {
		return cfg, errors.New("GEOCODE_TIMEOUT must be > 0")
	}
	if cfg.Geocode.ProviderURL == "" {
		return cfg, errors.New("GEOCODE_PROVIDER_URL must not be empty")
	}
	if len(cfg.Search.Sources) == 0 {
		return cfg, errors.New("LISTING_SOURCES must name at least one source")
	}
	if cfg.Search.PerSource < 1 || cfg.Search.PerSource > 50 {
		return cfg, errors.New("LISTINGS_PER_SOURCE must be between 1 and 50")
	}
	if !(cfg.Search.MaxRadiusMiles > 0) || math.IsInf(cfg.Search.MaxRadiusMiles, 0) {
		return cfg, errors.New("MAX_RADIUS_MILES must be a positive number")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToLower(s)
	}
	return in
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
