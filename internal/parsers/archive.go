package parsers

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned when the tar stream holds no entry at all
var ErrEmptyArchive = errors.New("archive has no entries")

// ArchiveVerifier checks that a package archive can be decompressed and
// starts with a readable tar header. It does not read the whole archive.
type ArchiveVerifier struct{}

// Supports returns true if the compression token has a known decoder
func (v *ArchiveVerifier) Supports(compression string) bool {
	switch compression {
	case "xz", "zst", "gz", "bz2":
		return true
	}
	return false
}

// Verify opens path with the decoder for compression and reads one tar header
func (v *ArchiveVerifier) Verify(path, compression string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader
	switch compression {
	case "gz":
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case "bz2":
		r = bzip2.NewReader(f)
	case "xz":
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case "zst":
		zst, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zst.Close()
		r = zst
	default:
		return fmt.Errorf("unsupported compression %q", compression)
	}

	if _, err := tar.NewReader(r).Next(); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyArchive
		}
		return fmt.Errorf("error reading tar header: %w", err)
	}
	return nil
}
