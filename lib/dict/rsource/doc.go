// Package rsource implements dict.ISource on top of Redis.
//
// Every partition is a Redis hash named <prefix><LETTER> (DH for HELLO with the default
// prefix). The hash fields are the upper case terms and the values the record JSON as it
// appears in the partition files of fsource. A lookup is a single HGET, so the whole
// partition never travels over the wire.
//
// A missing hash and a missing field are both reported as "not loaded". Connection
// failures are reported as dict.ErrPartition and end up as NotFound in the provider.
//
// Loading the data is outside the server; any tool that can issue HSET will do, e.g.
//
//	redis-cli HSET DH HELLO '{"MEANINGS": {"noun": ["a greeting"]}}'
package rsource
