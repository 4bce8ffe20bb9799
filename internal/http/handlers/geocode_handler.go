// Geocoding proxy handler.
//
// GET /api/geocode?location=<text> forwards to the configured provider with the
// server-side credential, so browsers never need the key. The success body is
// the contract ProxyStrategy consumes.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apartment-search/internal/geocode"
	"github.com/tbourn/go-apartment-search/internal/http/middleware"
)

// GeocodeResponse is the success body of the geocoding proxy.
type GeocodeResponse struct {
	Lat              float64 `json:"lat" example:"39.9526"`
	Lng              float64 `json:"lng" example:"-75.1652"`
	FormattedAddress string  `json:"formatted_address" example:"Philadelphia, PA, USA"`
}

// Geocode godoc
// @ID          geocode
// @Summary     Geocode a location
// @Description Resolves a location through the geocoding provider using the server credential. Responses are cacheable for five minutes.
// @Tags        Geocoding
// @Produce     json
// @Param       location  query     string  true  "Location text"  example(Philadelphia, PA)
// @Success     200       {object}  handlers.GeocodeResponse
// @Failure     400       {object}  handlers.ErrorResponse  "Missing location"
// @Failure     404       {object}  handlers.ErrorResponse  "No result"
// @Failure     500       {object}  handlers.ErrorResponse  "Credential not configured or provider failure"
// @Router      /api/geocode [get]
func (h *Handlers) Geocode(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")

	location := strings.TrimSpace(c.Query("location"))
	if location == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing required query parameter: location")
		return
	}
	if h.geocoder == nil {
		failErr(c, geocode.ErrNotConfigured, errGeocodeFailed)
		return
	}

	coords, status, err := h.geocoder.Lookup(c.Request.Context(), location)
	if err != nil {
		if _, known := translate(err, errGeocodeFailed); !known {
			middleware.LoggerFrom(c).Warn().Str("status", status).Msg("geocode proxy: provider call failed")
		}
		failErr(c, err, errGeocodeFailed)
		return
	}

	ok(c, http.StatusOK, GeocodeResponse{
		Lat:              coords.Lat,
		Lng:              coords.Lng,
		FormattedAddress: coords.FormattedAddress,
	})
}
