package romloader

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

func createTestXZFile(t *testing.T, romData []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rom.xz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create xz file: %v", err)
	}
	defer f.Close()

	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create xz writer: %v", err)
	}
	if _, err := w.Write(romData); err != nil {
		t.Fatalf("failed to write to xz: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close xz: %v", err)
	}
	return path
}

func createTestTarGzFile(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.tar.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create tar.gz file: %v", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, data := range entries {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(data))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("failed to write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return path
}

func TestLoader_XZLoad(t *testing.T) {
	testData := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	path := createTestXZFile(t, testData)

	data, _, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("data mismatch: expected %v, got %v", testData, data)
	}
}

func TestLoader_TarGzSelectsRequestedExtension(t *testing.T) {
	path := createTestTarGzFile(t, map[string][]byte{
		"game.rom": {1, 2, 3},
		"save.sna": {4, 5, 6},
	})

	data, name, err := Load(path, ".sna")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if name != "save.sna" {
		t.Errorf("expected save.sna, got %s", name)
	}
	if !bytes.Equal(data, []byte{4, 5, 6}) {
		t.Errorf("data mismatch: got %v", data)
	}
}

func TestLoader_TarGzNoMatch(t *testing.T) {
	path := createTestTarGzFile(t, map[string][]byte{
		"readme.txt": []byte("hello"),
	})

	_, _, err := Load(path, ".rom")
	if err != ErrNoMatchingMember {
		t.Errorf("expected ErrNoMatchingMember, got %v", err)
	}
}
