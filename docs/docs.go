// Package docs serves the OpenAPI document for the HTTP API.
//
// The document mirrors the swag annotations on the handlers in
// internal/http/handlers and the general info in cmd/server/main.go.
// Regenerate it after changing either:
//
//	swag init -g cmd/server/main.go -o docs
//
// TestSwaggerDocCoversRoutes in internal/http fails when a registered route
// is missing here.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/geocode": {
            "get": {
                "description": "Resolves a location through the geocoding provider using the server credential. Responses are cacheable for five minutes.",
                "produces": ["application/json"],
                "tags": ["Geocoding"],
                "summary": "Geocode a location",
                "operationId": "geocode",
                "parameters": [
                    {"type": "string", "example": "Philadelphia, PA", "description": "Location text", "name": "location", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.GeocodeResponse"}},
                    "400": {"description": "Missing location", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No result", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Credential not configured or provider failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/amenities": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalogue"],
                "summary": "List amenities",
                "operationId": "listAmenities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AmenitiesResponse"}}
                }
            }
        },
        "/api/v1/cache": {
            "delete": {
                "description": "Removes every cached search result and remembered listing.",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Clear the result cache",
                "operationId": "clearCache",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ClearCacheResponse"}}
                }
            }
        },
        "/api/v1/cache/sweep": {
            "post": {
                "description": "Removes expired search results and listings now instead of waiting for the periodic sweep. Fresh entries are kept.",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Sweep stale cache entries",
                "operationId": "sweepCache",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SweepCacheResponse"}}
                }
            }
        },
        "/api/v1/listings/{id}": {
            "get": {
                "description": "Returns a listing seen in a recent search. Listings are remembered for the listing cache TTL.",
                "produces": ["application/json"],
                "tags": ["Listings"],
                "summary": "Get a remembered listing",
                "operationId": "getListing",
                "parameters": [
                    {"type": "string", "example": "zillow-39.953_-75.165-00", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Listing"}},
                    "404": {"description": "Listing not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Listing could not be loaded", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/search": {
            "get": {
                "description": "Same as POST /search with parameters in the query string. Lists are comma-separated.",
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Search apartments (query string)",
                "operationId": "getSearch",
                "parameters": [
                    {"type": "string", "example": "Philadelphia", "description": "City, address or ZIP", "name": "location", "in": "query", "required": true},
                    {"type": "number", "description": "Radius in miles (default 10)", "name": "radius", "in": "query"},
                    {"type": "string", "example": "gym,parking", "description": "Required amenities, comma-separated", "name": "amenities", "in": "query"},
                    {"type": "string", "example": "zillow", "description": "Sources, comma-separated", "name": "sources", "in": "query"},
                    {"type": "integer", "description": "Minimum monthly price", "name": "min_price", "in": "query"},
                    {"type": "integer", "description": "Maximum monthly price", "name": "max_price", "in": "query"},
                    {"type": "integer", "description": "Minimum bedrooms", "name": "min_bedrooms", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchResponse"}},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Search failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Resolves the location, aggregates listings from the selected sources, filters and sorts them by distance. Identical searches within the cache TTL are served from cache.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Search apartments",
                "operationId": "postSearch",
                "parameters": [
                    {"description": "Search payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchResponse"}},
                    "400": {"description": "Invalid location or radius", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Search failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/sources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalogue"],
                "summary": "List listing sources",
                "operationId": "listSources",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SourcesResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Coordinates": {
            "type": "object",
            "properties": {
                "formatted_address": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "domain.Filters": {
            "type": "object",
            "properties": {
                "amenities": {"type": "array", "items": {"type": "string"}},
                "max_price": {"type": "integer"},
                "min_bedrooms": {"type": "integer"},
                "min_price": {"type": "integer"}
            }
        },
        "domain.Listing": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "amenities": {"type": "array", "items": {"type": "string"}},
                "available_date": {"type": "string"},
                "bathrooms": {"type": "number"},
                "bedrooms": {"type": "integer"},
                "city": {"type": "string"},
                "description": {"type": "string"},
                "distance_miles": {"type": "number"},
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "price": {"type": "integer"},
                "source": {"type": "string"},
                "sqft": {"type": "integer"},
                "state": {"type": "string"},
                "title": {"type": "string"},
                "zipcode": {"type": "string"}
            }
        },
        "handlers.AmenitiesResponse": {
            "type": "object",
            "properties": {
                "amenities": {"type": "array", "items": {"$ref": "#/definitions/services.Amenity"}}
            }
        },
        "handlers.ClearCacheResponse": {
            "type": "object",
            "properties": {
                "removed": {"type": "integer", "example": 42}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "resource not found"},
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.GeocodeResponse": {
            "type": "object",
            "properties": {
                "formatted_address": {"type": "string", "example": "Philadelphia, PA, USA"},
                "lat": {"type": "number", "example": 39.9526},
                "lng": {"type": "number", "example": -75.1652}
            }
        },
        "handlers.ListingView": {
            "allOf": [
                {"$ref": "#/definitions/domain.Listing"},
                {
                    "type": "object",
                    "properties": {
                        "distance_label": {"type": "string", "example": "2.4 mi"}
                    }
                }
            ]
        },
        "handlers.SweepCacheResponse": {
            "type": "object",
            "properties": {
                "removed": {"type": "integer", "example": 3}
            }
        },
        "handlers.SearchRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/domain.Filters"},
                "location": {"type": "string", "example": "Philadelphia, PA"},
                "radius": {"type": "number", "example": 10},
                "sources": {"type": "array", "items": {"type": "string"}, "example": ["zillow", "realtor"]}
            }
        },
        "handlers.SearchResponse": {
            "type": "object",
            "properties": {
                "center": {"$ref": "#/definitions/domain.Coordinates"},
                "count": {"type": "integer"},
                "from_cache": {"type": "boolean"},
                "listings": {"type": "array", "items": {"$ref": "#/definitions/handlers.ListingView"}}
            }
        },
        "handlers.SourcesResponse": {
            "type": "object",
            "properties": {
                "sources": {"type": "array", "items": {"type": "string"}, "example": ["zillow", "realtor", "apartments"]}
            }
        },
        "services.Amenity": {
            "type": "object",
            "properties": {
                "value": {"type": "string"},
                "label": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Apartment Search API",
	Description:      "Location-based apartment search with result caching and a geocoding proxy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
