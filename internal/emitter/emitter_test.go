package emitter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlan_SortedDeterministic(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"types.ts":  []byte("b"),
		"client.ts": []byte("aa"),
		"sub/x.md":  []byte("ccc"),
	}
	planned := Plan(files)
	if len(planned) != 3 {
		t.Fatalf("planned: got %d", len(planned))
	}
	if planned[0].RelPath != "client.ts" || planned[1].RelPath != "sub/x.md" || planned[2].RelPath != "types.ts" {
		t.Errorf("order: got %+v", planned)
	}
	if planned[0].Size != 2 || planned[2].Size != 1 {
		t.Errorf("sizes: got %+v", planned)
	}
}

func TestWrite_CreatesFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := map[string][]byte{
		"client.ts": []byte("export {};\n"),
		"sub/a.md":  []byte("# a\n"),
	}
	if err := Write(dir, files, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "client.ts"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "export {};\n" {
		t.Errorf("content: got %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "a.md")); err != nil {
		t.Errorf("nested file: %v", err)
	}
}

func TestWrite_ConflictWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "client.ts"), []byte("old"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	err := Write(dir, map[string][]byte{"client.ts": []byte("new")}, false)
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error: got %v", err)
	}
	// The original must be untouched.
	data, _ := os.ReadFile(filepath.Join(dir, "client.ts"))
	if string(data) != "old" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestWrite_ForceOverwrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "client.ts"), []byte("old"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	if err := Write(dir, map[string][]byte{"client.ts": []byte("new")}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "client.ts"))
	if string(data) != "new" {
		t.Errorf("content: got %q", data)
	}
}

func TestWrite_DistinctFilesShareDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := Write(dir, map[string][]byte{"types.ts": []byte("a")}, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// A second emitter writing different files into the same directory must
	// pass without force.
	if err := Write(dir, map[string][]byte{"hooks.ts": []byte("b")}, false); err != nil {
		t.Fatalf("second write: %v", err)
	}
}
