package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apartment-search/internal/cache"
	"github.com/tbourn/go-apartment-search/internal/config"
	"github.com/tbourn/go-apartment-search/internal/geocode"
	"github.com/tbourn/go-apartment-search/internal/http/handlers"
	"github.com/tbourn/go-apartment-search/internal/search"
	"github.com/tbourn/go-apartment-search/internal/services"
)

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   100,
		Security:    config.SecurityConfig{EnableHSTS: false},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

// newTestServer wires the real services over an in-memory cache and the
// static geocoder, so no network is involved.
func newTestServer(t *testing.T, cfg config.Config, geocoder handlers.GeocodeLookup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := cache.New(cache.NewMemoryStore())
	agg := search.NewAggregator(search.WithPerSource(4))
	deps := Deps{
		Search: &services.SearchService{
			Cache:            c,
			Geocoder:         geocode.NewResolver([]geocode.Strategy{geocode.StaticStrategy{}}),
			Aggregator:       agg,
			RememberListings: true,
		},
		Listings: &services.ListingService{Cache: c, Catalog: agg},
		Geocoder: geocoder,
	}

	r := gin.New()
	RegisterRoutes(r, deps, cfg)
	return r
}

func serve(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newTestServer(t, testConfig(), nil)

	w := serve(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("request id / security headers missing: %v", w.Header())
	}

	w = serve(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = serve(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPost, "/health", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/swagger/index.html", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger must be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newTestServer(t, cfg, nil)

	w := serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "http://evil.test" {
		t.Fatalf("unlisted origin echoed")
	}
}

func TestSearchFlow_CacheListingAndClear(t *testing.T) {
	r := newTestServer(t, testConfig(), nil)
	body := `{"location":"Philadelphia","radius":10,"sources":["zillow","realtor"]}`

	w := serve(r, http.MethodPost, "/api/v1/search", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first search = %d %s", w.Code, w.Body.String())
	}
	var first handlers.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.FromCache || first.Count == 0 || first.Count != len(first.Listings) {
		t.Fatalf("unexpected first response: from_cache=%v count=%d", first.FromCache, first.Count)
	}
	if first.Center.Lat < 39.9 || first.Center.Lat > 40.0 {
		t.Fatalf("center not resolved to Philadelphia: %+v", first.Center)
	}
	for i := 1; i < len(first.Listings); i++ {
		if first.Listings[i].DistanceMiles < first.Listings[i-1].DistanceMiles {
			t.Fatalf("listings not sorted by distance at %d", i)
		}
	}

	// Same search with a different spelling is served from cache.
	w = serve(r, http.MethodGet, "/api/v1/search?location=+philadelphia+&radius=10&sources=realtor,zillow", "", nil)
	var second handlers.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.FromCache || second.Count != first.Count {
		t.Fatalf("expected cached response with %d listings, got from_cache=%v count=%d", first.Count, second.FromCache, second.Count)
	}

	// Listings are remembered individually.
	id := first.Listings[0].ID
	w = serve(r, http.MethodGet, "/api/v1/listings/"+id, "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), id) {
		t.Fatalf("GET listing = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/sources", "", nil)
	if !strings.Contains(w.Body.String(), `"apartments"`) {
		t.Fatalf("sources = %s", w.Body.String())
	}
	w = serve(r, http.MethodGet, "/api/v1/amenities", "", nil)
	if !strings.Contains(w.Body.String(), `"label":"Pet Friendly"`) {
		t.Fatalf("amenities = %s", w.Body.String())
	}

	// Everything is fresh, so a sweep keeps the remembered listing.
	w = serve(r, http.MethodPost, "/api/v1/cache/sweep", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"removed":0`) {
		t.Fatalf("POST cache/sweep = %d %s", w.Code, w.Body.String())
	}
	if w = serve(r, http.MethodGet, "/api/v1/listings/"+id, "", nil); w.Code != http.StatusOK {
		t.Fatalf("listing lost after sweep: %d", w.Code)
	}

	w = serve(r, http.MethodDelete, "/api/v1/cache", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE cache = %d", w.Code)
	}
	w = serve(r, http.MethodGet, "/api/v1/listings/"+id, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("listing should be gone after clear, got %d", w.Code)
	}
	w = serve(r, http.MethodPost, "/api/v1/search", body, nil)
	if strings.Contains(w.Body.String(), `"from_cache":true`) {
		t.Fatalf("search after clear should miss the cache")
	}
}

func TestSearch_Validation(t *testing.T) {
	r := newTestServer(t, testConfig(), nil)
	for _, body := range []string{
		`{"location":"","radius":10}`,
		`{"location":"Boston","radius":-1}`,
		`{"location":"Boston","radius":500}`,
	} {
		w := serve(r, http.MethodPost, "/api/v1/search", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s -> %d", body, w.Code)
		}
	}
}

func TestGeocodeProxy_NotConfigured(t *testing.T) {
	r := newTestServer(t, testConfig(), geocode.NewProviderClient("", ""))

	w := serve(r, http.MethodGet, "/api/geocode?location=Austin", "", nil)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"code":"not_configured"`) {
		t.Fatalf("GET /api/geocode = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Cache-Control") != "public, max-age=300" {
		t.Fatalf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}

func TestRateLimit_ExemptsProbes(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newTestServer(t, cfg, nil)

	if w := serve(r, http.MethodGet, "/api/v1/amenities", "", nil); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/amenities", "", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d; want 429", w.Code)
	}
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
			t.Fatalf("health probe %d = %d", i, w.Code)
		}
	}
}

func TestSwagger_Enabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r := newTestServer(t, cfg, nil)

	w := serve(r, http.MethodGet, "/swagger/index.html", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/index.html = %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}

func TestRateLimit_GeocodeProxyExemptForLoopback(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newTestServer(t, cfg, geocode.NewProviderClient("", ""))

	local := func(target string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = "127.0.0.1:50123"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 3; i++ {
		if code := local("/api/geocode?location=Austin"); code == http.StatusTooManyRequests {
			t.Fatalf("loopback geocode call %d was limited", i)
		}
	}

	if w := serve(r, http.MethodGet, "/api/geocode?location=Austin", "", nil); w.Code == http.StatusTooManyRequests {
		t.Fatalf("first remote geocode call was limited")
	}
	if w := serve(r, http.MethodGet, "/api/geocode?location=Austin", "", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second remote geocode call = %d; want 429", w.Code)
	}
}
