// Listing, catalogue and cache HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apartment-search/internal/http/middleware"
	"github.com/tbourn/go-apartment-search/internal/services"
)

// AmenitiesResponse lists the amenity catalogue.
type AmenitiesResponse struct {
	Amenities []services.Amenity `json:"amenities"`
}

// SourcesResponse lists the known listing sources.
type SourcesResponse struct {
	Sources []string `json:"sources" example:"zillow,realtor,apartments"`
}

// ClearCacheResponse reports how many entries were removed.
type ClearCacheResponse struct {
	Removed int `json:"removed" example:"42"`
}

// SweepCacheResponse reports how many stale entries a sweep removed.
type SweepCacheResponse struct {
	Removed int `json:"removed" example:"3"`
}

// GetListing godoc
// @ID          getListing
// @Summary     Get a remembered listing
// @Description Returns a listing seen in a recent search. Listings are remembered for the listing cache TTL.
// @Tags        Listings
// @Produce     json
// @Param       id   path      string  true  "Listing ID"  example(zillow-39.953_-75.165-00)
// @Success     200  {object}  domain.Listing
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Listing could not be loaded"
// @Router      /api/v1/listings/{id} [get]
func (h *Handlers) GetListing(c *gin.Context) {
	l, err := h.listingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err, errListingLoad)
		return
	}
	ok(c, http.StatusOK, l)
}

// ListAmenities godoc
// @ID          listAmenities
// @Summary     List amenities
// @Tags        Catalogue
// @Produce     json
// @Success     200  {object}  handlers.AmenitiesResponse
// @Router      /api/v1/amenities [get]
func (h *Handlers) ListAmenities(c *gin.Context) {
	ok(c, http.StatusOK, AmenitiesResponse{Amenities: h.listingSvc.Amenities()})
}

// ListSources godoc
// @ID          listSources
// @Summary     List listing sources
// @Tags        Catalogue
// @Produce     json
// @Success     200  {object}  handlers.SourcesResponse
// @Router      /api/v1/sources [get]
func (h *Handlers) ListSources(c *gin.Context) {
	ok(c, http.StatusOK, SourcesResponse{Sources: h.listingSvc.Sources()})
}

// ClearCache godoc
// @ID          clearCache
// @Summary     Clear the result cache
// @Description Removes every cached search result and remembered listing.
// @Tags        Cache
// @Produce     json
// @Success     200  {object}  handlers.ClearCacheResponse
// @Router      /api/v1/cache [delete]
func (h *Handlers) ClearCache(c *gin.Context) {
	n := h.listingSvc.ClearCache(c.Request.Context())
	middleware.LoggerFrom(c).Info().Int("removed", n).Msg("cache cleared")
	ok(c, http.StatusOK, ClearCacheResponse{Removed: n})
}

// SweepCache godoc
// @ID          sweepCache
// @Summary     Sweep stale cache entries
// @Description Removes expired search results and listings now instead of waiting for the periodic sweep. Fresh entries are kept.
// @Tags        Cache
// @Produce     json
// @Success     200  {object}  handlers.SweepCacheResponse
// @Router      /api/v1/cache/sweep [post]
func (h *Handlers) SweepCache(c *gin.Context) {
	n := h.listingSvc.SweepCache(c.Request.Context())
	middleware.LoggerFrom(c).Info().Int("removed", n).Msg("cache swept")
	ok(c, http.StatusOK, SweepCacheResponse{Removed: n})
}
