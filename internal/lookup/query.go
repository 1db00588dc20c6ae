// Package lookup holds the client-side interaction state machines of the
// postal code lookup: LookupFlow (search, not-found fallback, manual save)
// and CopyFeedback (transient "copied" confirmation).
//
// A Flow is owned by exactly one loop. Operations mutate the state
// synchronously and return a Cmd describing blocking work (timers, remote
// calls, clipboard writes). The host runs the Cmd off-loop and feeds the
// resulting Event back through Flow.Handle.
package lookup

import (
	"context"
	"strings"

	"cep_lookup/platform/apperr"
)

// Query is a validated city and region pair. Immutable once a search begins.
type Query struct {
	City       string
	RegionCode string
}

// NewQuery trims both inputs and rejects empty values.
func NewQuery(rawCity, rawRegionCode string) (Query, error) {
	q := Query{
		City:       strings.TrimSpace(rawCity),
		RegionCode: strings.TrimSpace(rawRegionCode),
	}
	if q.City == "" || q.RegionCode == "" {
		return Query{}, apperr.Validation(MsgFillQuery).WithOp("lookup.NewQuery")
	}
	return q, nil
}

// LookupResult is the outcome of a search call. Code is set iff Found.
type LookupResult struct {
	Found bool
	Code  string
}

// SaveRequest offers a candidate code for the retained Query.
type SaveRequest struct {
	City          string
	RegionCode    string
	CandidateCode string
}

// NewSaveRequest trims the candidate text and rejects it when empty.
func NewSaveRequest(q Query, rawCandidate string) (SaveRequest, error) {
	candidate := strings.TrimSpace(rawCandidate)
	if candidate == "" {
		return SaveRequest{}, apperr.Validation(MsgEnterCode).WithOp("lookup.NewSaveRequest")
	}
	return SaveRequest{City: q.City, RegionCode: q.RegionCode, CandidateCode: candidate}, nil
}

// SaveResult is the outcome of a save call. On success a non-empty Code is
// the canonical value; on failure Message explains why.
type SaveResult struct {
	Success bool
	Code    string
	Message string
}

// Client performs the two remote operations. A returned error is a
// transport failure; business negatives come back as results.
type Client interface {
	Search(ctx context.Context, q Query) (LookupResult, error)
	Save(ctx context.Context, req SaveRequest) (SaveResult, error)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
