package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/paths"
)

func TestNewCreatesCommandLog(t *testing.T) {
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger, closer, err := New(pp, "generate")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Printf("scene s1: ok")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(pp.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d log files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "generate-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("log file name = %q, want generate-<timestamp>.log", name)
	}

	contents, err := os.ReadFile(filepath.Join(pp.LogsDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(contents), "storyreel generate: project "+pp.Root) {
		t.Errorf("missing header line in:\n%s", contents)
	}
	if !strings.Contains(string(contents), "scene s1: ok") {
		t.Errorf("missing log line in:\n%s", contents)
	}
}

func TestNewSeparatesRunsPerCommand(t *testing.T) {
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, command := range []string{"split", "export"} {
		_, closer, err := New(pp, command)
		if err != nil {
			t.Fatalf("New(%s): %v", command, err)
		}
		closer.Close()
	}

	entries, err := os.ReadDir(pp.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	var prefixes []string
	for _, e := range entries {
		prefixes = append(prefixes, strings.SplitN(e.Name(), "-", 2)[0])
	}
	if len(prefixes) != 2 || prefixes[0] == prefixes[1] {
		t.Errorf("log files = %v, want one per command", prefixes)
	}
}
