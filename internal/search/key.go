// Package search holds the pure, deterministic parts of the search pipeline:
// canonical cache keys for search requests and the listing aggregator that
// synthesizes, filters, and orders candidates around a resolved center.
//
// Like the rest of the core it is engineered for testability:
//
//   - No logging in the library (callers decide how/what to log)
//   - No hidden randomness; identical inputs reproduce identical output
//   - Deterministic sorting (stable order for ties)
//   - Safe for concurrent use once constructed
package search

import (
	"strconv"
	"strings"

	"github.com/tbourn/go-apartment-search/internal/domain"
)

// keyVersion prefixes every canonical key so a change in encoding never
// aliases entries written by an older build.
const keyVersion = "v1"

// CanonicalKey encodes req into an order-insensitive cache key.
//
// Normalization:
//   - LocationText is trimmed, lower-cased, and internal whitespace collapsed.
//   - Amenities and Sources are normalized and sorted (see domain.NormalizeSet).
//   - Unset optional filters encode as "-".
//
// Every field is length-prefixed ("<len>:<value>"), so user-controlled text
// can never shift a boundary between adjacent fields.
func CanonicalKey(req domain.SearchRequest) string {
	var b strings.Builder
	b.Grow(64 + len(req.LocationText))

	b.WriteString(keyVersion)
	writeField(&b, NormalizeLocation(req.LocationText))
	writeField(&b, strconv.FormatFloat(req.RadiusMiles, 'g', -1, 64))
	writeSet(&b, domain.NormalizeSet(req.Filters.Amenities))
	writeField(&b, optInt(req.Filters.MinPrice))
	writeField(&b, optInt(req.Filters.MaxPrice))
	writeField(&b, optInt(req.Filters.MinBedrooms))
	writeSet(&b, domain.NormalizeSet(req.Sources))
	return b.String()
}

// NormalizeLocation trims, lower-cases, and collapses all runs of Unicode
// whitespace in s to a single ASCII space.
func NormalizeLocation(s string) string {
	return strings.ToLower(normalizeWhitespace(s))
}

func writeField(b *strings.Builder, v string) {
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}

func writeSet(b *strings.Builder, vs []string) {
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(vs)))
	b.WriteByte('#')
	for _, v := range vs {
		writeField(b, v)
	}
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

// normalizeWhitespace collapses whitespace runs and trims both ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
