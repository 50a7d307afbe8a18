package romloader

import (
	"fmt"

	"github.com/ulikunitz/xz"
)

// extractFromXZ decompresses a .xz file. A plain .xz wraps a single member
// and is returned directly; a .tar.xz/.txz wraps a tar archive and is
// walked for the first entry matching wantExt.
func extractFromXZ(path string, wantExt string) ([]byte, string, error) {
	f, err := openRaw(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	zr, err := xz.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("romloader: failed to open xz: %w", err)
	}

	if isTarPath(path) {
		return extractFromTar(zr, path, wantExt)
	}

	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", fmt.Errorf("romloader: failed to read xz member: %w", err)
	}
	return data, baseNameNoExt(path), nil
}
