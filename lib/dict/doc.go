// Package dict provides the dictionary lookup used by the server.
//
// The dataset is read-only and partitioned by the first letter of the canonical (upper case)
// term. Storage is hidden behind the ISource interface; the subpackages contain the concrete
// implementations:
//
//   - fsource: one JSON file per partition on the local file system (D<LETTER>.json)
//   - rsource: one Redis hash per partition, the record JSON stored under the term
//
// Provider sits on top of a source and implements the lookup rules:
//
//   - the query is upper cased, so lookups are case-insensitive
//   - every kind of failure collapses into NotFound; callers can not tell a broken
//     partition from a missing word
//   - each category of a found term is cut to the first MaxDefinitions definitions,
//     keeping the order of the dataset
//
// Results are built fresh for every query and never cached.
package dict
