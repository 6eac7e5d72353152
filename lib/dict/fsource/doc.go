// Package fsource implements dict.ISource on top of JSON partition files.
//
// Layout: the data directory holds one file per leading letter, named D<LETTER>.json
// (e.g. dictionary/data/DH.json for HELLO). Each file is a JSON object mapping the upper
// case term to its record:
//
//	{
//	  "HELLO": {
//	    "MEANINGS": {"noun": ["a greeting", "an expression of surprise"]},
//	    "ANTONYMS": [],
//	    "SYNONYMS": []
//	  }
//	}
//
// Partitions are opened and parsed on every lookup. There is no cache and no shared state,
// so concurrent lookups never need locking.
package fsource
