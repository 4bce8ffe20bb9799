// Package geocode resolves free-text locations into coordinates.
//
// Resolution walks an ordered list of Strategy values and returns the first
// success. Network strategies run under a per-attempt timeout; when every
// strategy declines, the resolver falls back to a fixed default center, so
// the only failure a caller can observe is a blank input.
//
// Typical chain:
//
//	ProxyStrategy    → own /api/geocode endpoint (or any service with that contract)
//	ProviderStrategy → Google Geocoding API, only with a plausible credential
//	StaticStrategy   → built-in ZIP and city table
package geocode

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/geo"
	"github.com/tbourn/go-apartment-search/internal/observability"
)

// ErrEmptyLocation is returned when the location text is blank after trimming.
var ErrEmptyLocation = errors.New("location is empty")

// DefaultTimeout bounds a single strategy attempt.
const DefaultTimeout = 5 * time.Second

// Strategy is one way of turning text into coordinates. Attempt reports
// ok=false for any failure (no result, transport error, timeout, bad payload).
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, text string) (domain.Coordinates, bool)
}

// Resolver runs strategies in order, first success wins.
type Resolver struct {
	strategies []Strategy
	timeout    time.Duration
	fallback   domain.Coordinates
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout sets the per-strategy timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithFallback replaces the coordinate returned when every strategy declines.
func WithFallback(c domain.Coordinates) ResolverOption {
	return func(r *Resolver) { r.fallback = c }
}

// NewResolver builds a Resolver over strategies; nil entries are skipped.
func NewResolver(strategies []Strategy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		timeout:  DefaultTimeout,
		fallback: DefaultLocation,
	}
	for _, s := range strategies {
		if s != nil {
			r.strategies = append(r.strategies, s)
		}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Strategies returns the strategy names in attempt order.
func (r *Resolver) Strategies() []string {
	out := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Name()
	}
	return out
}

// Resolve returns coordinates for text. It fails for blank text and when ctx
// ends before a strategy answers; every other input ends in a strategy
// result or the fallback coordinate.
func (r *Resolver) Resolve(ctx context.Context, text string) (domain.Coordinates, error) {
	ctx, span := otel.Tracer("geocode/Resolver").Start(ctx, "Resolve")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Coordinates{}, ErrEmptyLocation
	}
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	for _, s := range r.strategies {
		c, ok := r.attempt(ctx, s, text)
		if ok {
			span.SetAttributes(attribute.String("geocode.strategy", s.Name()))
			return c, nil
		}
	}

	// A caller that went away made every network strategy miss; the
	// fallback would be a wrong answer, not a degraded one.
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return domain.Coordinates{}, err
	}

	log.Debug().Str("location", text).Msg("geocode: all strategies declined; using fallback")
	span.SetAttributes(attribute.String("geocode.strategy", "fallback"))
	return r.fallback, nil
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, text string) (domain.Coordinates, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx, span := otel.Tracer("geocode/Resolver").Start(ctx, "attempt",
		trace.WithAttributes(attribute.String("geocode.strategy", s.Name())),
	)
	defer span.End()

	c, ok := s.Attempt(ctx, text)
	if ok && !geo.Valid(c.Lat, c.Lng) {
		log.Warn().Str("strategy", s.Name()).Float64("lat", c.Lat).Float64("lng", c.Lng).
			Msg("geocode: strategy returned out-of-range coordinates")
		ok = false
	}
	result := "miss"
	if ok {
		result = "ok"
		if strings.TrimSpace(c.FormattedAddress) == "" {
			c.FormattedAddress = text
		}
	}
	observability.GeocodeAttempts.WithLabelValues(s.Name(), result).Inc()
	span.SetAttributes(attribute.Bool("geocode.ok", ok))
	return c, ok
}
