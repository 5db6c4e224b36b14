// Package emitter holds the planning and writing machinery shared by the
// render targets. Each target builds a deterministic files map; this package
// turns it into a sorted plan and materializes it on disk.
package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// PlannedFile describes a file an emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Plan lists the files map in deterministic path order.
func Plan(files map[string][]byte) []PlannedFile {
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}
	return planned
}

// Write materializes files under outDir. Unless force is set, any planned
// path that already exists fails the whole write before anything is touched;
// the check is per file rather than per directory because several targets
// share one output directory. Each file is written atomically via a temp
// file and rename.
func Write(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if !force {
		for rel := range files {
			p := filepath.Join(abs, rel)
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("emitter: output file %q already exists (use --force to overwrite)", p)
			}
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
