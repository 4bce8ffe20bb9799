// Package httpapi wires the HTTP transport (Gin) to the search services,
// middleware and route handlers. It owns the cross-cutting concerns: tracing,
// correlation IDs, redacted access logs, panic recovery, metrics, rate
// limiting, CORS and security headers.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery
//  5. Body size limit
//  6. Metrics (+ /metrics)
//  7. Rate limiter (health and metrics exempt; geocode proxy exempt for loopback)
//  8. CORS and security headers
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-apartment-search/internal/config"
	"github.com/tbourn/go-apartment-search/internal/http/handlers"
	"github.com/tbourn/go-apartment-search/internal/http/middleware"
)

// maxBodyBytes caps request bodies; a search payload is well under 1 KiB.
const maxBodyBytes = 64 << 10

// geocodeProxyPath is fixed so the proxy strategy can target it regardless of
// the API base path.
const geocodeProxyPath = "/api/geocode"

// Deps are the application services the routes call. Geocoder may be nil,
// in which case GET /api/geocode answers not_configured.
type Deps struct {
	Search   handlers.SearchService
	Listings handlers.ListingService
	Geocoder handlers.GeocodeLookup
}

// RegisterRoutes attaches middleware and endpoints to r:
//
//	GET    /health, /metrics, /swagger/*any (when enabled)
//	GET    /api/geocode
//	POST   {base}/search, GET {base}/search
//	GET    {base}/listings/:id
//	GET    {base}/amenities, {base}/sources
//	DELETE {base}/cache, POST {base}/cache/sweep
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Api-Key", "X-Goog-Api-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
		RPS:    cfg.RateRPS,
		Burst:  cfg.RateBurst,
		Exempt: []string{"/health", "/metrics"},
		// GEOCODE_PROXY_URL may point back at this server.
		LoopbackExempt: []string{geocodeProxyPath},
	})
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Search, deps.Listings, deps.Geocoder)

	r.GET(geocodeProxyPath, h.Geocode)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/search", h.PostSearch)
		api.GET("/search", h.GetSearch)

		api.GET("/listings/:id", h.GetListing)
		api.GET("/amenities", h.ListAmenities)
		api.GET("/sources", h.ListSources)

		api.DELETE("/cache", h.ClearCache)
		api.POST("/cache/sweep", h.SweepCache)
	}
}

// corsMiddleware returns the CORS chain. With no configured origins every
// origin is allowed without credentials; otherwise allowed origins are echoed.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// Set ACAO even without an Origin header so probes and curl see it.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps request bodies at maxBytes via http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
