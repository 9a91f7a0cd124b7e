package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// auditSourceLimit caps how much source the audit prompt carries.
const auditSourceLimit = 256 << 10

// CollectAuditSource gathers the Go source under root into a single
// annotated listing for the code audit. Hidden directories, vendored
// code and test files are skipped; the listing is truncated once the
// size cap is hit.
func CollectAuditSource(root string) (string, error) {
	var b strings.Builder
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		if b.Len() >= auditSourceLimit {
			return fs.SkipAll
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		fmt.Fprintf(&b, "// ===== %s =====\n%s\n", rel, data)
		return nil
	})
	if err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no Go source found under %s", root)
	}
	if b.Len() > auditSourceLimit {
		return b.String()[:auditSourceLimit] + "\n// ... truncated ...\n", nil
	}
	return b.String(), nil
}
