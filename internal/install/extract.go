package install

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// DefaultMaxEntryBytes caps a single extracted file.
const DefaultMaxEntryBytes = 512 << 20

var (
	// ErrUnsupportedFormat is returned for data that is not a known archive.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrUnsafePath is returned for entries that would land outside the
	// destination directory.
	ErrUnsafePath = errors.New("archive entry escapes destination")
	// ErrFileTooLarge is returned when an entry exceeds the size cap.
	ErrFileTooLarge = errors.New("archive entry exceeds maximum size")
)

// Format is a detected archive format.
type Format int

const (
	FormatUnknown Format = iota
	FormatZIP
	Format7z
	FormatRAR
	FormatTarGz
)

func (f Format) String() string {
	switch f {
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatRAR:
		return "rar"
	case FormatTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

// DetectFormat identifies an archive by its leading bytes.
func DetectFormat(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return FormatZIP
	case bytes.HasPrefix(header, magicRAR):
		return FormatRAR
	case bytes.HasPrefix(header, magic7z):
		return Format7z
	case bytes.HasPrefix(header, magicGzip):
		return FormatTarGz
	}
	return FormatUnknown
}

// Extract unpacks the archive at path into dest, which must exist.
func Extract(path, dest string, maxEntry int64) error {
	if maxEntry <= 0 {
		maxEntry = DefaultMaxEntryBytes
	}
	format, err := detectFile(path)
	if err != nil {
		return err
	}
	x := extractor{dest: dest, max: maxEntry}
	switch format {
	case FormatZIP:
		return x.zip(path)
	case Format7z:
		return x.sevenZip(path)
	case FormatRAR:
		return x.rar(path)
	case FormatTarGz:
		return x.tarGz(path)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func detectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("reading archive header: %w", err)
	}
	return DetectFormat(header[:n]), nil
}

type extractor struct {
	dest string
	max  int64
}

// target resolves an entry name inside dest.
func (x extractor) target(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	p := filepath.Join(x.dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(x.dest, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return p, nil
}

func (x extractor) dir(name string) error {
	p, err := x.target(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0750)
}

func (x extractor) file(name string, r io.Reader) error {
	p, err := x.target(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, io.LimitReader(r, x.max+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if n > x.max {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, name)
	}
	return nil
}

func (x extractor) zip(path string) error {
	r, err := zip.OpenReader(path)
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = r.Close()
		return fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if err := x.zipEntry(f); err != nil {
			return err
		}
	}
	return nil
}

func (x extractor) zipEntry(f *zip.File) error {
	mode := f.FileInfo().Mode()
	if mode.IsDir() {
		return x.dir(f.Name)
	}
	if mode&fs.ModeSymlink != 0 {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s in archive: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	return x.file(f.Name, rc)
}

func (x extractor) sevenZip(path string) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening 7z: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := x.dir(f.Name); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s in archive: %w", f.Name, err)
		}
		err = x.file(f.Name, rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (x extractor) rar(path string) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening rar: %w", err)
	}
	defer func() { _ = r.Close() }()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rar entry: %w", err)
		}
		if header.IsDir {
			if err := x.dir(header.Name); err != nil {
				return err
			}
			continue
		}
		if err := x.file(header.Name, r); err != nil {
			return err
		}
	}
}

func (x extractor) tarGz(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}
		switch h.Typeflag {
		case tar.TypeDir:
			if err := x.dir(h.Name); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := x.file(h.Name, tr); err != nil {
				return err
			}
		}
	}
}
