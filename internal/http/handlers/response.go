// Package handlers provides HTTP handler implementations for the public API.
//
// This file owns the response side shared by every endpoint: the error
// envelope, the translation of service and geocoding sentinels into HTTP
// statuses, and the success writer.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "bad_request",
//	  "message": "location is required"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apartment-search/internal/geocode"
	"github.com/tbourn/go-apartment-search/internal/http/middleware"
	"github.com/tbourn/go-apartment-search/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
}

// apiError is what an error becomes on the wire.
type apiError struct {
	status  int
	code    string
	message string
}

var (
	errSearchFailed  = apiError{http.StatusInternalServerError, ErrCodeSearchFailed, "search failed"}
	errListingLoad   = apiError{http.StatusInternalServerError, ErrCodeInternal, "could not load listing"}
	errGeocodeFailed = apiError{http.StatusInternalServerError, ErrCodeGeocodeFailed, "failed to geocode location"}
)

// knownErrors maps sentinels to their HTTP form. Matching uses errors.Is, so
// wrapped errors translate the same way.
var knownErrors = []struct {
	target error
	apiError
}{
	{services.ErrEmptyLocation, apiError{http.StatusBadRequest, ErrCodeBadRequest, "location is required"}},
	{services.ErrInvalidRadius, apiError{http.StatusBadRequest, ErrCodeBadRequest, "radius must be a positive number within the allowed maximum"}},
	{services.ErrListingNotFound, apiError{http.StatusNotFound, ErrCodeNotFound, "listing not found"}},
	{geocode.ErrNotConfigured, apiError{http.StatusInternalServerError, ErrCodeNotConfigured, "server geocoding credential is not configured"}},
	{geocode.ErrNoResult, apiError{http.StatusNotFound, ErrCodeNotFound, "no geocoding result found for the requested location"}},
}

// translate returns the HTTP form of err, or fallback when err is not a
// known sentinel.
func translate(err error, fallback apiError) (apiError, bool) {
	for _, k := range knownErrors {
		if errors.Is(err, k.target) {
			return k.apiError, true
		}
	}
	return fallback, false
}

// failErr writes the envelope for err. Unrecognized errors are attached to
// the gin context so the access log records the cause.
func failErr(c *gin.Context, err error, fallback apiError) {
	e, known := translate(err, fallback)
	if !known {
		_ = c.Error(err)
	}
	fail(c, e.status, e.code, e.message)
}

// fail aborts the request with a structured error. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get(middleware.HeaderRequestID),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for the router's fallback handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
