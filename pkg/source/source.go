// Package source fetches raw attack tree envelopes for stored assessments.
//
// An assessment is identified by a UUID. [FileSource] reads the on-disk
// layout <root>/<id>/attack_tree.json, [MongoSource] reads one document per
// assessment from a MongoDB collection, and [Cached] memoizes either through
// a [cache.Cache]. Sources return the envelope bytes untouched; turning them
// into a tree is the normalizer's job.
package source

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an assessment has no attack tree.
var ErrNotFound = errors.New("assessment not found")

// Source fetches attack tree envelopes by assessment id.
type Source interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	// Fetch returns the raw JSON envelope for id. Invalid ids fail with
	// INVALID_ASSESSMENT; missing ones wrap [ErrNotFound].
	Fetch(ctx context.Context, id string) ([]byte, error)

	// List returns the assessments that carry an attack tree, newest first.
	List(ctx context.Context) ([]Assessment, error)
}

// Assessment summarizes a stored assessment.
type Assessment struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// timestampLayouts are the formats accepted for stored timestamps. The
// second is an ISO 8601 timestamp without a zone, read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// parseTimestamp returns the zero time for values in no known layout.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
