package fsource

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dictd/lib/dict"
	"os"
	"path/filepath"
)

const (
	// DefaultDir is the data directory used when none is configured
	DefaultDir = "dictionary/data"
	// filePrefix and fileSuffix frame the partition letter in a file name (DA.json, DB.json, ...)
	filePrefix = "D"
	fileSuffix = ".json"
)

// NewFileSource creates a source reading partition files from dir
func NewFileSource(dir string) dict.ISource {
	if dir == "" {
		dir = DefaultDir
	}
	return &fileSource{dir: dir}
}

// fileSource implements dict.ISource on a directory of JSON partition files.
// Every Get opens and parses the partition on its own, nothing is shared between calls.
type fileSource struct {
	dir string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dict.ISource)
// --------------------------------------------------------------------------

func (s *fileSource) Name() string {
	return "fs:" + s.dir
}

func (s *fileSource) Get(ctx context.Context, term string) (dict.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return dict.Record{}, false, err
	}

	partition, ok := dict.PartitionOf(term)
	if !ok {
		return dict.Record{}, false, fmt.Errorf("%w: no partition for %q", dict.ErrPartition, term)
	}

	entries, err := s.loadPartition(partition)
	if err != nil {
		return dict.Record{}, false, err
	}

	raw, found := entries[term]
	if !found {
		return dict.Record{}, false, nil
	}

	var rec dict.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return dict.Record{}, false, fmt.Errorf("invalid record %q in partition %s: %w", term, partition, err)
	}
	return rec, true, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// partitionPath returns the file holding a partition
func (s *fileSource) partitionPath(partition string) string {
	return filepath.Join(s.dir, filePrefix+partition+fileSuffix)
}

// loadPartition reads and parses a whole partition file. Records stay raw, only the
// requested one gets decoded, but the complete file must be valid JSON.
func (s *fileSource) loadPartition(partition string) (map[string]json.RawMessage, error) {
	path := s.partitionPath(partition)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dict.ErrPartition, err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", dict.ErrPartition, path, err)
	}
	return entries, nil
}
