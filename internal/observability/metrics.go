package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain collectors for the search pipeline. Label values are drawn from small
// closed sets (tier names, strategy names, fixed results) to keep cardinality
// bounded.
var (
	// CacheLookups counts cache reads by tier and result (hit|miss|stale|error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Result cache lookups by tier and outcome.",
		},
		[]string{"tier", "result"},
	)

	// CacheWrites counts cache writes by tier and result (ok|error|skipped).
	CacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Result cache writes by tier and outcome.",
		},
		[]string{"tier", "result"},
	)

	// CacheEvictions counts entries physically removed by sweeps and clears.
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Entries removed from the result cache by tier and reason.",
		},
		[]string{"tier", "reason"},
	)

	// GeocodeAttempts counts strategy attempts by strategy and result
	// (ok|miss|skipped).
	GeocodeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_attempts_total",
			Help: "Geocoding strategy attempts by strategy and outcome.",
		},
		[]string{"strategy", "result"},
	)
)

func init() {
	prometheus.MustRegister(CacheLookups, CacheWrites, CacheEvictions, GeocodeAttempts)
}
