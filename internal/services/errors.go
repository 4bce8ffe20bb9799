// Package services defines the business logic for apartment search and the
// remembered-listing cache. This file centralizes service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrEmptyLocation is returned when the location text is blank after
	// trimming. It is raised before any cache or network access.
	ErrEmptyLocation = errors.New("location is required")

	// ErrInvalidRadius is returned when the radius is not a finite positive
	// number within the configured maximum.
	ErrInvalidRadius = errors.New("radius is out of range")

	// ErrGeocodeFailed wraps unexpected resolver failures.
	ErrGeocodeFailed = errors.New("geocoding failed")

	// ErrListingNotFound indicates the listing is not remembered or has
	// expired.
	ErrListingNotFound = errors.New("listing not found")
)
