// Package repository holds the postal code stores: spreadsheet and Postgres
// backends plus read-through cache decorators.
package repository

import (
	"context"
	"errors"

	"cep_lookup/platform/normalize"
)

// Entry sources.
const (
	SourceBase = "base"
	SourceUser = "user"
)

// ErrNotFound is returned by Find when no entry matches.
var ErrNotFound = errors.New("postal code not found")

// Entry is one city/region/code row.
type Entry struct {
	City   string
	Region string
	Code   string
	Source string
}

// Key is the normalized lookup key of the entry.
func (e Entry) Key() string {
	return Key(e.City, e.Region)
}

// Key builds the lookup key for a city and region. Accents and case are
// ignored on the city; the region is compared upper-cased.
func Key(city, region string) string {
	return normalize.City(city) + "|" + normalize.Region(region)
}

// Store resolves and records postal codes.
type Store interface {
	// Find returns the first entry matching city and region, base entries
	// before user additions, or ErrNotFound.
	Find(ctx context.Context, city, region string) (Entry, error)
	// Add records a user entry. persisted is false when the entry is only
	// held in memory; err is set when it was not recorded at all.
	Add(ctx context.Context, e Entry) (persisted bool, err error)
}
