package search

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/geo"
)

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	sources   []Source
	perSource int
	now       func() time.Time
}

func defaultConfig() config {
	return config{
		sources:   DefaultSources,
		perSource: 6,
		now:       time.Now,
	}
}

// WithSources replaces the known sources. Empty input is ignored.
func WithSources(src ...Source) Option {
	return func(c *config) {
		if len(src) > 0 {
			c.sources = src
		}
	}
}

// WithPerSource sets how many candidates each source synthesizes.
func WithPerSource(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.perSource = n
		}
	}
}

// WithClock injects the clock that anchors availability dates. It is read
// once, when the Aggregator is built.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// ----------------------------------------------------------------------------
// Aggregator

// goldenAngle spreads successive candidates evenly around the center.
const goldenAngle = 2.399963229728653

// ringFractions place candidates at growing fractions of the radius. The last
// ring lies outside it so the radius filter always has work to do.
var ringFractions = []float64{0.12, 0.30, 0.48, 0.66, 0.84, 1.15}

// Aggregator synthesizes per-source candidate listings around a center and
// applies filters and ordering. Geometry and price are pure functions of
// (center, radius, source, index); flavor text comes from a PRNG seeded by
// (source, index), so identical inputs always produce identical output.
// Availability dates count from the UTC day the Aggregator was built, which
// keeps output stable across midnight.
type Aggregator struct {
	cfg       config
	available time.Time
}

// NewAggregator returns an Aggregator configured with opts.
func NewAggregator(opts ...Option) *Aggregator {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Aggregator{
		cfg:       cfg,
		available: cfg.now().UTC().Truncate(24 * time.Hour),
	}
}

// Sources returns the names of the sources this aggregator knows.
func (a *Aggregator) Sources() []string {
	out := make([]string, len(a.cfg.sources))
	for i, s := range a.cfg.sources {
		out[i] = s.Name
	}
	return out
}

// Generate returns the filtered candidates for every active source, sorted by
// ascending distance, then ascending price, then generation order.
//
// An empty sources slice activates every known source; unknown names are
// ignored. Filters use AND semantics for amenities. The result is never nil;
// it is empty when nothing satisfies the constraints or when the center or
// radius is not usable.
func (a *Aggregator) Generate(center domain.Coordinates, radiusMiles float64, sources []string, f domain.Filters) []domain.Listing {
	out := []domain.Listing{}
	if !geo.Valid(center.Lat, center.Lng) || !(radiusMiles > 0) || math.IsInf(radiusMiles, 0) {
		return out
	}

	want := domain.NormalizeSet(f.Amenities)
	g := generation{
		center:   center,
		radius:   radiusMiles,
		cell:     cellID(center),
		day:      a.available,
		locality: parseLocality(center.FormattedAddress),
		title:    cases.Title(language.English),
	}

	for _, src := range a.activeSources(sources) {
		for i := 0; i < a.cfg.perSource; i++ {
			l := g.candidate(src, i)
			l.DistanceMiles = geo.DistanceMiles(center.Lat, center.Lng, l.Lat, l.Lng)
			if keep(l, radiusMiles, want, f) {
				out = append(out, l)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMiles != out[j].DistanceMiles {
			return out[i].DistanceMiles < out[j].DistanceMiles
		}
		return out[i].Price < out[j].Price
	})
	return out
}

// activeSources keeps configured order so results do not depend on the order
// the caller listed sources in.
func (a *Aggregator) activeSources(requested []string) []Source {
	names := domain.NormalizeSet(requested)
	if len(names) == 0 {
		return a.cfg.sources
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]Source, 0, len(names))
	for _, s := range a.cfg.sources {
		if _, ok := want[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}

func keep(l domain.Listing, radius float64, amenities []string, f domain.Filters) bool {
	if math.IsNaN(l.DistanceMiles) || l.DistanceMiles > radius {
		return false
	}
	if !l.HasAmenities(amenities) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.MinBedrooms != nil && l.Bedrooms < *f.MinBedrooms {
		return false
	}
	return true
}

// ----------------------------------------------------------------------------
// Candidate synthesis

type locality struct {
	city, state, zip string
}

// generation holds per-call state. The title caser is stateful and must not
// be shared between goroutines, so each Generate call builds its own.
type generation struct {
	center   domain.Coordinates
	radius   float64
	cell     string
	day      time.Time
	locality locality
	title    cases.Caser
}

func (g *generation) candidate(src Source, i int) domain.Listing {
	frac := ringFractions[i%len(ringFractions)] + 0.02*float64(i/len(ringFractions))
	angle := src.Phase + float64(i)*goldenAngle
	north := g.radius * (frac*math.Cos(angle) + src.BiasNorth)
	east := g.radius * (frac*math.Sin(angle) + src.BiasEast)
	lat, lng := geo.Offset(g.center.Lat, g.center.Lng, north, east)

	bedrooms := 1 + i%3
	bathrooms := 1 + 0.5*float64((i+1)%3)
	price := 800 + 450*bedrooms + (i*137)%400 + src.PriceOffset
	if price < 0 {
		price = 0
	}
	sqft := 450 + 320*bedrooms + (i*53)%180

	rng := seededRand(src.Name, i)
	amenities := pickAmenities(rng)
	word := titleWords[rng.IntN(len(titleWords))]
	street := streetNames[rng.IntN(len(streetNames))]
	number := 100 + rng.IntN(9900)

	return domain.Listing{
		ID:            fmt.Sprintf("%s-%s-%02d", src.Name, g.cell, i),
		Title:         fmt.Sprintf("%s %dBR Apartment", g.title.String(word), bedrooms),
		Address:       fmt.Sprintf("%d %s", number, g.title.String(street)),
		City:          g.locality.city,
		State:         g.locality.state,
		Zipcode:       g.locality.zip,
		Price:         price,
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		SqftArea:      sqft,
		Lat:           lat,
		Lng:           lng,
		Amenities:     amenities,
		Source:        src.Label,
		ImageRef:      imageRefs[rng.IntN(len(imageRefs))],
		Description:   descriptions[rng.IntN(len(descriptions))],
		AvailableDate: g.day.AddDate(0, 0, rng.IntN(30)).Format("2006-01-02"),
	}
}

// seededRand returns a PRNG whose stream depends only on (source, index).
func seededRand(source string, index int) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source))
	return rand.New(rand.NewPCG(h.Sum64(), uint64(index)))
}

func pickAmenities(rng *rand.Rand) []string {
	n := 3 + rng.IntN(6)
	perm := rng.Perm(len(amenityCatalog))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, amenityCatalog[idx])
	}
	sort.Strings(out)
	return out
}

// cellID rounds the center so listing ids are stable per search area.
func cellID(c domain.Coordinates) string {
	return fmt.Sprintf("%.3f_%.3f", c.Lat, c.Lng)
}

var zipRE = regexp.MustCompile(`\b\d{5}\b`)

// parseLocality extracts city/state/zip from addresses shaped like
// "Philadelphia, PA 19019" or "Austin, TX, USA". Unknown shapes yield the
// first comma-separated part as the city.
func parseLocality(formatted string) locality {
	parts := strings.Split(formatted, ",")
	var loc locality
	if len(parts) == 0 {
		return loc
	}
	loc.city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		fields := strings.Fields(parts[1])
		if len(fields) > 0 && !zipRE.MatchString(fields[0]) {
			loc.state = fields[0]
		}
	}
	loc.zip = zipRE.FindString(formatted)
	return loc
}
