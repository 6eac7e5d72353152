package fsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/dictd/lib/dict"
	dicttesting "github.com/ValentinKolb/dictd/lib/dict/testing"
)

// writePartitions writes the dataset as partition files into a temporary directory
func writePartitions(t *testing.T, data dicttesting.Dataset) string {
	t.Helper()
	dir := t.TempDir()

	for partition, entries := range data {
		var sb strings.Builder
		sb.WriteString("{")
		first := true
		for term, raw := range entries {
			if !first {
				sb.WriteString(",\n")
			}
			first = false
			sb.WriteString(`"` + term + `": ` + raw)
		}
		sb.WriteString("}")

		path := filepath.Join(dir, filePrefix+partition+fileSuffix)
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			t.Fatalf("write partition %s: %v", partition, err)
		}
	}
	return dir
}

func Test(t *testing.T) {
	dicttesting.RunSourceTests(t, "FileSource", func(t *testing.T, data dicttesting.Dataset) dict.ISource {
		return NewFileSource(writePartitions(t, data))
	})
}

func TestMissingPartitionIsPartitionError(t *testing.T) {
	source := NewFileSource(t.TempDir())

	_, loaded, err := source.Get(context.Background(), "ZZZZQX")
	if loaded {
		t.Fatal("Expected no record")
	}
	if !errors.Is(err, dict.ErrPartition) {
		t.Errorf("Expected ErrPartition, got %v", err)
	}
}

func TestCorruptPartition(t *testing.T) {
	dir := t.TempDir()
	// HELLO itself is fine, but the file as a whole is not valid JSON
	content := `{"HELLO": {"MEANINGS": {"noun": ["a greeting"]}}, "HEL`
	if err := os.WriteFile(filepath.Join(dir, "DH.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(dir)
	_, loaded, err := source.Get(context.Background(), "HELLO")
	if loaded || !errors.Is(err, dict.ErrPartition) {
		t.Errorf("Get on corrupt partition = loaded %v, err %v", loaded, err)
	}

	if res := dict.NewProvider(source).Lookup(context.Background(), "hello"); res.Found {
		t.Error("Corrupt partition must resolve to NotFound")
	}
}

func TestDefaultDir(t *testing.T) {
	source := NewFileSource("")
	if source.Name() != "fs:"+DefaultDir {
		t.Errorf("Unexpected name %s", source.Name())
	}
}

func TestPartitionPath(t *testing.T) {
	s := &fileSource{dir: "data"}
	if got := s.partitionPath("H"); got != filepath.Join("data", "DH.json") {
		t.Errorf("Unexpected path %s", got)
	}
}
