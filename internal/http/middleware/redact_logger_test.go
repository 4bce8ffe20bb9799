package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	key := "AIza" + strings.Repeat("b", 35)
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"location=Philadelphia&radius=10", "location=Philadelphia&radius=10"},
		{"location=19103&radius=2.5", "location=19103&radius=2.5"},
		{"address=Austin&key=" + key, "address=Austin&key=[REDACTED]"},
		{"api_key=abc&token=t0k", "api_key=[REDACTED]&token=[REDACTED]"},
		{"monkey=1", "monkey=1"},
		{"forwarded " + key + " here", "forwarded [REDACTED:key] here"},
		{"contact a.b@example.com", "contact [REDACTED:email]"},
		{"call (215) 555-1212", "call ([REDACTED:phone]"},
	}
	for _, tc := range cases {
		if got := redact(tc.in); got != tc.want {
			t.Errorf("redact(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/listings/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "contact=a.b+tag@example.com&key=AIza" + strings.Repeat("Z", 35)
	req := httptest.NewRequest(http.MethodGet, "/listings/zillow-1?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Forwarded-For-Contact", "mail a@b.com phone 215-555-1212")
	req.Header.Set(HeaderRequestID, "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/listings/:id"`,
		`"request_id":"rid-req"`,
		`[REDACTED:email]`,
		`key=[REDACTED]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Forwarded-For-Contact":"mail [REDACTED:email] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in logs:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, "AIza") || strings.Contains(logs, "topsecret") {
		t.Fatalf("secret leaked into logs:\n%s", logs)
	}
}

func TestRedactingLogger_Levels_RequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	// No RequestID middleware: the logger falls back to the request header.
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/gin-error", func(c *gin.Context) {
		_ = c.Error(errors.New("upstream key=secret failed"))
		c.Status(http.StatusBadRequest)
	})

	for _, tc := range []struct{ path, rid string }{
		{"/warn", "rid-warn"},
		{"/error", "rid-err"},
		{"/gin-error", "rid-gin"},
	} {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set(HeaderRequestID, tc.rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"errors":"Error #01: upstream key=[REDACTED] failed`) {
		t.Fatalf("gin errors should be logged redacted: %s", logs)
	}
}
