package romloader

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// extractFromGzip decompresses a .gz file. A plain .gz wraps a single
// member and is returned directly; a .tar.gz/.tgz wraps a tar archive and
// is walked for the first entry matching wantExt.
func extractFromGzip(path string, wantExt string) ([]byte, string, error) {
	f, zr, err := openGzip(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	defer zr.Close()

	if isTarPath(path) {
		return extractFromTar(zr, path, wantExt)
	}

	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", fmt.Errorf("romloader: failed to read gzip member: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return data, name, nil
}

func openGzip(path string) (*os.File, *gzip.Reader, error) {
	f, err := openRaw(path)
	if err != nil {
		return nil, nil, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("romloader: failed to open gzip: %w", err)
	}
	return f, zr, nil
}

// extractFromTar walks a tar stream (already decompressed) for the first
// regular-file entry matching wantExt.
func extractFromTar(r io.Reader, path string, wantExt string) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("romloader: failed to read tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !matchesWant(hdr.Name, wantExt) {
			continue
		}
		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("romloader: failed to read %s: %w", hdr.Name, err)
		}
		return data, filepath.Base(hdr.Name), nil
	}
	return nil, "", ErrNoMatchingMember
}

func isTarPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") ||
		strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz")
}
