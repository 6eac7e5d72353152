package dict

import (
	"context"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"unicode/utf8"
)

var Logger = logger.GetLogger("dict")

// MaxDefinitions is the number of definitions kept per category
const MaxDefinitions = 2

// Provider resolves queries against a source. It holds no mutable state and can be
// shared by any number of connection handlers.
type Provider struct {
	source ISource
}

// NewProvider creates a lookup provider on top of the given source
func NewProvider(source ISource) *Provider {
	return &Provider{source: source}
}

// Source returns the underlying source
func (p *Provider) Source() ISource {
	return p.source
}

// Lookup resolves a raw query. Every failure (invalid input, broken partition, missing
// term, meanings without a single definition) results in NotFound.
func (p *Provider) Lookup(ctx context.Context, query string) Result {
	if !utf8.ValidString(query) {
		return NotFound
	}

	term := Canonical(query)
	if _, ok := PartitionOf(term); !ok {
		return NotFound
	}

	rec, loaded, err := p.source.Get(ctx, term)
	if err != nil {
		Logger.Debugf("Lookup of %q in %s failed: %v", term, p.source.Name(), err)
		return NotFound
	}
	if !loaded {
		return NotFound
	}

	meanings := rec.Meanings.Truncate(MaxDefinitions)
	if meanings.Definitions() == 0 {
		return NotFound
	}

	return Result{
		Term:     term,
		Meanings: meanings,
		Found:    true,
	}
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// Canonical returns the upper case key for a query. Full case mapping is applied,
// so one rune may expand to several ("ß" -> "SS", "ﬁ" -> "FI").
func Canonical(query string) string {
	// a Caser keeps state and must not be shared between goroutines
	return cases.Upper(language.Und).String(query)
}

// PartitionOf returns the partition name (the first letter) of a canonical term.
// Empty terms and terms starting with a path separator or NUL have no partition.
func PartitionOf(term string) (string, bool) {
	r, size := utf8.DecodeRuneInString(term)
	if size == 0 || r == utf8.RuneError {
		return "", false
	}
	switch r {
	case '/', '\\', 0:
		return "", false
	}
	return term[:size], true
}
