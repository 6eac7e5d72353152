package dict

import (
	"context"
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISource is a read-only dictionary partitioned by the first letter of the canonical term.
// Implementations must be safe for concurrent use.
type ISource interface {
	// Get returns the record stored under the canonical term. The boolean return value
	// indicates whether the term was found. A partition that is missing or can not be
	// parsed is reported as an error wrapping ErrPartition.
	Get(ctx context.Context, term string) (rec Record, loaded bool, err error)
	// Name returns a short description of the source used in logs (e.g. "fs:dictionary/data")
	Name() string
}

// ErrPartition is returned by sources when the partition for a term can not be used
var ErrPartition = errors.New("partition unavailable")

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// Record is a single dictionary entry. Fields other than MEANINGS are ignored.
type Record struct {
	Meanings Meanings `json:"MEANINGS"`
}

// Result is the outcome of a lookup. A zero Result means "not found".
type Result struct {
	// Term is the canonical (upper case) form of the query
	Term string
	// Meanings holds at most MaxDefinitions definitions per category
	Meanings Meanings
	// Found is false for every kind of miss
	Found bool
}

// NotFound is the single result for every kind of miss
var NotFound = Result{}
