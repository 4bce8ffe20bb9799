package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-apartment-search/internal/domain"
)

// maxBody caps how much of a geocoding response is read.
const maxBody = 1 << 20

// DefaultProviderURL is the Google Geocoding API JSON endpoint.
const DefaultProviderURL = "https://maps.googleapis.com/maps/api/geocode/json"

// credentialPrefix is the prefix every Google Maps API key carries.
const credentialPrefix = "AIza"

// ValidCredential reports whether key looks like a usable provider key.
func ValidCredential(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), credentialPrefix)
}

// newHTTPClient returns a client with a hard ceiling on top of the
// per-attempt context deadline.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// getJSON performs GET base?params and decodes a 2xx JSON body into out.
func getJSON(ctx context.Context, client *http.Client, base string, params url.Values, out any) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Proxy strategy

// ProxyStrategy calls an endpoint implementing
// GET {base}/api/geocode?location=<text> → {lat, lng, formatted_address}.
type ProxyStrategy struct {
	BaseURL string
	Client  *http.Client
}

// NewProxyStrategy returns nil when baseURL is blank so it can be passed
// straight to NewResolver.
func NewProxyStrategy(baseURL string) Strategy {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &ProxyStrategy{BaseURL: baseURL, Client: newHTTPClient()}
}

func (p *ProxyStrategy) Name() string { return "proxy" }

// proxyResponse uses pointers so a missing lat or lng is distinguishable
// from a zero coordinate.
type proxyResponse struct {
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	FormattedAddress string   `json:"formatted_address"`
}

func (p *ProxyStrategy) Attempt(ctx context.Context, text string) (domain.Coordinates, bool) {
	var body proxyResponse
	err := getJSON(ctx, p.Client, p.BaseURL+"/api/geocode", url.Values{"location": {text}}, &body)
	if err != nil {
		log.Debug().Err(err).Str("strategy", p.Name()).Msg("geocode attempt failed")
		return domain.Coordinates{}, false
	}
	if body.Lat == nil || body.Lng == nil {
		log.Debug().Str("strategy", p.Name()).Msg("geocode response missing lat/lng")
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: *body.Lat, Lng: *body.Lng, FormattedAddress: body.FormattedAddress}, true
}

// ----------------------------------------------------------------------------
// Provider strategy

// ErrNoResult is returned by ProviderStrategy.Lookup when the provider
// answered but found nothing.
var ErrNoResult = errors.New("no geocoding result")

// ErrNotConfigured is returned by ProviderStrategy.Lookup when no plausible
// credential is configured.
var ErrNotConfigured = errors.New("geocoding credential not configured")

// ProviderStrategy calls the Google Geocoding API directly.
type ProviderStrategy struct {
	BaseURL    string
	Credential string
	Client     *http.Client
}

// NewProviderStrategy returns nil unless credential passes ValidCredential.
// An empty baseURL selects DefaultProviderURL.
func NewProviderStrategy(baseURL, credential string) Strategy {
	p := newProvider(baseURL, credential)
	if !ValidCredential(p.Credential) {
		return nil
	}
	return p
}

// NewProviderClient is like NewProviderStrategy but always returns a client;
// Lookup reports ErrNotConfigured when the credential is unusable.
func NewProviderClient(baseURL, credential string) *ProviderStrategy {
	return newProvider(baseURL, credential)
}

func newProvider(baseURL, credential string) *ProviderStrategy {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultProviderURL
	}
	return &ProviderStrategy{
		BaseURL:    baseURL,
		Credential: strings.TrimSpace(credential),
		Client:     newHTTPClient(),
	}
}

func (p *ProviderStrategy) Name() string { return "provider" }

type providerResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup queries the provider. The returned status is the provider's own
// status string when a response was decoded.
func (p *ProviderStrategy) Lookup(ctx context.Context, text string) (domain.Coordinates, string, error) {
	if !ValidCredential(p.Credential) {
		return domain.Coordinates{}, "", ErrNotConfigured
	}
	var body providerResponse
	params := url.Values{"address": {text}, "key": {p.Credential}}
	if err := getJSON(ctx, p.Client, p.BaseURL, params, &body); err != nil {
		return domain.Coordinates{}, "", err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return domain.Coordinates{}, body.Status, ErrNoResult
	}
	r := body.Results[0]
	return domain.Coordinates{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
	}, body.Status, nil
}

func (p *ProviderStrategy) Attempt(ctx context.Context, text string) (domain.Coordinates, bool) {
	c, status, err := p.Lookup(ctx, text)
	if err != nil {
		// The request URL carries the credential; log only the status.
		log.Debug().Str("strategy", p.Name()).Str("status", status).Bool("no_result", errors.Is(err, ErrNoResult)).
			Msg("geocode attempt failed")
		return domain.Coordinates{}, false
	}
	return c, true
}
