package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dictd/lib/dict"
)

// Dataset maps a partition letter to its entries (term -> raw record JSON)
type Dataset map[string]map[string]string

// SourceFactory creates a source seeded with the given dataset
type SourceFactory func(t *testing.T, data Dataset) dict.ISource

// Fixture is the dataset every source is seeded with
var Fixture = Dataset{
	"H": {
		"HELLO": `{"MEANINGS": {"noun": ["a greeting", "an expression of surprise", "extra def dropped"]}, "ANTONYMS": [], "SYNONYMS": ["HI"]}`,
		"HOUSE": `{"MEANINGS": {"verb": ["to shelter"], "noun": ["a building", "a family line", "a legislative body"]}}`,
		"HUSH":  `{"MEANINGS": {}}`,
		"HAZE":  `{"ANTONYMS": ["CLARITY"]}`,
		"HOLE":  `{"MEANINGS": {"noun": [], "verb": []}}`,
	},
	"C": {
		"CAT": `{"MEANINGS": {"1": ["Noun", "feline mammal", ["Animals"], ["the cat sat"]]}}`,
		"COG": `{"MEANINGS": "not an object"}`,
	},
	"É": {
		"ÉTÉ": `{"MEANINGS": {"noun": ["summer in French"]}}`,
	},
}

// RunSourceTests runs the shared test suite against a source implementation
func RunSourceTests(t *testing.T, name string, factory SourceFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Get", func(t *testing.T) {
			testGet(t, factory(t, Fixture))
		})

		t.Run("Missing", func(t *testing.T) {
			testMissing(t, factory(t, Fixture))
		})

		t.Run("InvalidRecord", func(t *testing.T) {
			testInvalidRecord(t, factory(t, Fixture))
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory(t, Fixture))
		})

		t.Run("Provider", func(t *testing.T) {
			testProvider(t, dict.NewProvider(factory(t, Fixture)))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// definitions decodes the definitions of one category into strings. Non string
// definitions are returned in their JSON form.
func definitions(t testing.TB, m dict.Meanings, category string) []string {
	t.Helper()
	for _, sense := range m {
		if sense.Category != category {
			continue
		}
		out := make([]string, 0, len(sense.Definitions))
		for _, raw := range sense.Definitions {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				s = string(raw)
			}
			out = append(out, s)
		}
		return out
	}
	t.Fatalf("category %q not found in %+v", category, m)
	return nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testGet(t *testing.T, source dict.ISource) {
	ctx := context.Background()

	rec, loaded, err := source.Get(ctx, "HOUSE")
	if err != nil || !loaded {
		t.Fatalf("Get(HOUSE) = loaded %v, err %v", loaded, err)
	}

	if len(rec.Meanings) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(rec.Meanings))
	}
	// dataset order, not alphabetical
	if rec.Meanings[0].Category != "verb" || rec.Meanings[1].Category != "noun" {
		t.Errorf("Category order not preserved: %s, %s", rec.Meanings[0].Category, rec.Meanings[1].Category)
	}

	// the source itself does not truncate
	if got := definitions(t, rec.Meanings, "noun"); len(got) != 3 {
		t.Errorf("Expected 3 raw definitions, got %v", got)
	}

	rec, loaded, err = source.Get(ctx, "ÉTÉ")
	if err != nil || !loaded {
		t.Fatalf("Get(ÉTÉ) = loaded %v, err %v", loaded, err)
	}
	if got := definitions(t, rec.Meanings, "noun"); !equal(got, []string{"summer in French"}) {
		t.Errorf("Unexpected definitions %v", got)
	}
}

func testMissing(t *testing.T, source dict.ISource) {
	ctx := context.Background()

	// existing partition, unknown term
	if _, loaded, err := source.Get(ctx, "HXYZ"); loaded || err != nil {
		t.Errorf("Get(HXYZ) = loaded %v, err %v; want not loaded without error", loaded, err)
	}

	// missing partition: either a miss or a partition error, never a record
	_, loaded, err := source.Get(ctx, "ZZZZQX")
	if loaded {
		t.Error("Get(ZZZZQX) should not load a record")
	}
	if err != nil && !errors.Is(err, dict.ErrPartition) {
		t.Errorf("Expected ErrPartition, got %v", err)
	}

	// lookups are exact, the source does not fold case
	if _, loaded, _ := source.Get(ctx, "hello"); loaded {
		t.Error("Get(hello) should not match HELLO")
	}

	// cancelled context
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, loaded, err := source.Get(cctx, "HELLO"); loaded || err == nil {
		t.Errorf("Get with cancelled context = loaded %v, err %v", loaded, err)
	}
}

func testInvalidRecord(t *testing.T, source dict.ISource) {
	_, loaded, err := source.Get(context.Background(), "COG")
	if loaded && err == nil {
		t.Error("Get(COG) must not return a usable record")
	}
}

func testConcurrent(t *testing.T, source dict.ISource) {
	const goroutines = 32
	const iterations = 20

	terms := []string{"HELLO", "HOUSE", "CAT", "HXYZ", "ZZZZQX"}

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				term := terms[(g+i)%len(terms)]
				_, loaded, _ := source.Get(context.Background(), term)
				want := term == "HELLO" || term == "HOUSE" || term == "CAT"
				if loaded != want {
					errs <- fmt.Errorf("Get(%s) loaded = %v, want %v", term, loaded, want)
					return
				}
			}
		}(g)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func testProvider(t *testing.T, p *dict.Provider) {
	ctx := context.Background()

	t.Run("Truncate", func(t *testing.T) {
		res := p.Lookup(ctx, "hello")
		if !res.Found {
			t.Fatal("hello not found")
		}
		if res.Term != "HELLO" {
			t.Errorf("Expected canonical term HELLO, got %s", res.Term)
		}
		want := []string{"a greeting", "an expression of surprise"}
		if got := definitions(t, res.Meanings, "noun"); !equal(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		var results []dict.Result
		for _, q := range []string{"Cat", "cat", "CAT", "cAt"} {
			results = append(results, p.Lookup(ctx, q))
		}
		for i, res := range results {
			if !res.Found || res.Term != "CAT" {
				t.Fatalf("Query %d: found %v term %q", i, res.Found, res.Term)
			}
			if got := definitions(t, res.Meanings, "1"); !equal(got, []string{"Noun", "feline mammal"}) {
				t.Errorf("Query %d: unexpected definitions %v", i, got)
			}
		}
	})

	t.Run("Unicode", func(t *testing.T) {
		res := p.Lookup(ctx, "été")
		if !res.Found || res.Term != "ÉTÉ" {
			t.Errorf("été: found %v term %q", res.Found, res.Term)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		for _, q := range []string{"zzzzqx", "hxyz", "hush", "haze", "hole", "cog", "", "/etc/passwd", "\xff\xfe"} {
			if res := p.Lookup(ctx, q); res.Found {
				t.Errorf("Lookup(%q) should not be found, got %+v", q, res)
			}
		}
	})

	t.Run("NoMutation", func(t *testing.T) {
		first := p.Lookup(ctx, "house")
		first.Meanings[0].Definitions = nil
		second := p.Lookup(ctx, "house")
		if got := definitions(t, second.Meanings, "verb"); !equal(got, []string{"to shelter"}) {
			t.Errorf("Results share state: %v", got)
		}
	})
}
