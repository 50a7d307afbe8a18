package romloader

import (
	"fmt"
	"os"
	"path/filepath"
)

// openRaw opens path for a streaming decompressor; the caller owns the
// returned handle and must Close it.
func openRaw(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("romloader: failed to open %s: %w", path, err)
	}
	return f, nil
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
