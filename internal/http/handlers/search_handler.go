// Search HTTP handlers.
//
// Both endpoints funnel into SearchService.Search; GET exists so searches are
// linkable and cacheable by intermediaries.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/geo"
	"github.com/tbourn/go-apartment-search/internal/utils"
)

// defaultRadiusMiles applies when GET /search omits radius.
const defaultRadiusMiles = 10

//
// DTOs
//

// SearchRequest is the JSON payload for POST /search.
type SearchRequest struct {
	// Location is a city, address or ZIP code.
	Location string `json:"location" example:"Philadelphia, PA"`
	// Radius in miles; must be > 0 and within the server maximum.
	Radius float64 `json:"radius" example:"10"`
	// Filters narrow the result set; unset fields do not filter.
	Filters domain.Filters `json:"filters"`
	// Sources limits the listing sources; empty means all.
	Sources []string `json:"sources" example:"zillow,realtor"`
}

// ListingView is a listing plus its display distance.
type ListingView struct {
	domain.Listing
	DistanceLabel string `json:"distance_label" example:"2.4 mi"`
}

// SearchResponse is the body returned by both search endpoints.
type SearchResponse struct {
	Center    domain.Coordinates `json:"center"`
	Listings  []ListingView      `json:"listings"`
	FromCache bool               `json:"from_cache"`
	Count     int                `json:"count"`
}

func newSearchResponse(res domain.SearchResult) SearchResponse {
	views := make([]ListingView, len(res.Listings))
	for i, l := range res.Listings {
		views[i] = ListingView{Listing: l, DistanceLabel: geo.FormatDistance(l.DistanceMiles)}
	}
	return SearchResponse{
		Center:    res.Center,
		Listings:  views,
		FromCache: res.FromCache,
		Count:     len(views),
	}
}

//
// Handlers
//

// PostSearch godoc
// @ID          postSearch
// @Summary     Search apartments
// @Description Resolves the location, aggregates listings from the selected sources, filters and sorts them by distance. Identical searches within the cache TTL are served from cache.
// @Tags        Search
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SearchRequest  true  "Search payload"
// @Success     200   {object}  handlers.SearchResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid location or radius"
// @Failure     500   {object}  handlers.ErrorResponse  "Search failed"
// @Router      /api/v1/search [post]
func (h *Handlers) PostSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	h.runSearch(c, domain.SearchRequest{
		LocationText: req.Location,
		RadiusMiles:  req.Radius,
		Filters:      req.Filters,
		Sources:      req.Sources,
	})
}

// GetSearch godoc
// @ID          getSearch
// @Summary     Search apartments (query string)
// @Description Same as POST /search with parameters in the query string. Lists are comma-separated.
// @Tags        Search
// @Produce     json
// @Param       location      query     string  true   "City, address or ZIP"  example(Philadelphia)
// @Param       radius        query     number  false  "Radius in miles (default 10)"
// @Param       amenities     query     string  false  "Required amenities, comma-separated"  example(gym,parking)
// @Param       sources       query     string  false  "Sources, comma-separated"  example(zillow)
// @Param       min_price     query     int     false  "Minimum monthly price"
// @Param       max_price     query     int     false  "Maximum monthly price"
// @Param       min_bedrooms  query     int     false  "Minimum bedrooms"
// @Success     200           {object}  handlers.SearchResponse
// @Failure     400           {object}  handlers.ErrorResponse  "Invalid parameters"
// @Failure     500           {object}  handlers.ErrorResponse  "Search failed"
// @Router      /api/v1/search [get]
func (h *Handlers) GetSearch(c *gin.Context) {
	radius, okR := utils.ParseFloat(c.Query("radius"), defaultRadiusMiles)
	minPrice, okMin := utils.OptionalInt(c.Query("min_price"))
	maxPrice, okMax := utils.OptionalInt(c.Query("max_price"))
	minBeds, okBeds := utils.OptionalInt(c.Query("min_bedrooms"))
	if !okR || !okMin || !okMax || !okBeds {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid numeric query parameter")
		return
	}
	h.runSearch(c, domain.SearchRequest{
		LocationText: c.Query("location"),
		RadiusMiles:  radius,
		Filters: domain.Filters{
			Amenities:   utils.SplitCSV(c.Query("amenities")),
			MinPrice:    minPrice,
			MaxPrice:    maxPrice,
			MinBedrooms: minBeds,
		},
		Sources: utils.SplitCSV(c.Query("sources")),
	})
}

func (h *Handlers) runSearch(c *gin.Context, req domain.SearchRequest) {
	res, err := h.searchSvc.Search(c.Request.Context(), req)
	if err != nil {
		failErr(c, err, errSearchFailed)
		return
	}
	ok(c, http.StatusOK, newSearchResponse(res))
}
