package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabels_Inflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/listings/:id", func(c *gin.Context) { c.String(http.StatusOK, "listing") })
	r.DELETE("/cache", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseListing := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/listings/:id", "200"))
	baseMissing := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	baseDelete := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/cache", "204"))

	for _, p := range []string{"/listings/a", "/listings/b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s -> %d", p, w.Code)
		}
	}
	for _, p := range []string{"/wp-admin", "/.env"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s -> %d", p, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cache", nil))

	// Both listing ids collapse into one series.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/listings/:id", "200")); got != baseListing+2 {
		t.Fatalf("listing counter = %v; want %v", got, baseListing+2)
	}
	// Unmatched paths share a label instead of minting new series.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != baseMissing+2 {
		t.Fatalf("unmatched counter = %v; want %v", got, baseMissing+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/cache", "204")); got != baseDelete+1 {
		t.Fatalf("delete counter = %v; want %v", got, baseDelete+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
