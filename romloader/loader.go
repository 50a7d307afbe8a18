// Package romloader resolves a ROM or snapshot path to raw bytes,
// transparently extracting from compressed archives (ZIP, 7z, gzip,
// tar.gz, RAR, xz, tar.xz) when the path names a container rather than a
// plain file (SPEC_FULL.md §4.12).
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection.
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// maxFileSize caps any single extracted member; generous for the largest
// file this core loads (a multi-page .Z80 v3 snapshot).
const maxFileSize = 8 * 1024 * 1024

// ErrNoMatchingMember is returned when an archive has no member matching
// the requested extension.
var ErrNoMatchingMember = errors.New("romloader: no matching file found in archive")

// ErrUnsupportedFormat is returned for unrecognized container formats.
var ErrUnsupportedFormat = errors.New("romloader: unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds the size limit.
var ErrFileTooLarge = errors.New("romloader: file exceeds maximum size limit")

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatXZ
)

// Load reads path, which may be a plain file or a member of a .zip/.7z/
// .rar/.gz/.tar.gz/.xz/.tar.xz archive, and returns its raw bytes plus the
// resolved member name. wantExt (e.g. ".rom", ".sna", ".z80") selects which
// archive member to extract when the container holds more than one
// candidate file; an empty wantExt matches the first regular file.
func Load(path string, wantExt string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("romloader: failed to open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("romloader: failed to read header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("romloader: failed to seek: %w", err)
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("romloader: failed to read %s: %w", path, err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return extractFromZIP(path, wantExt)
	case format7z:
		return extractFrom7z(path, wantExt)
	case formatGzip:
		return extractFromGzip(path, wantExt)
	case formatRAR:
		return extractFromRAR(path, wantExt)
	case formatXZ:
		return extractFromXZ(path, wantExt)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the container format from magic bytes, falling
// back to the file extension.
func detectFormat(header []byte, path string) formatType {
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magicXZ) {
		return formatXZ
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rom", ".sna", ".z80", ".bin":
		return formatRaw
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".xz", ".txz":
		return formatXZ
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") {
		return formatGzip
	}
	if strings.HasSuffix(lower, ".tar.xz") {
		return formatXZ
	}

	return formatUnknown
}

// matchesWant reports whether name should be treated as the member an
// archive extraction is looking for.
func matchesWant(name, wantExt string) bool {
	if wantExt == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), wantExt)
}

// limitedRead reads from r up to maxFileSize bytes, erroring if exceeded.
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxFileSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
