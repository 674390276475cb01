// Package romfile extracts ROM images from raw files and compressed
// archives (ZIP, 7z, gzip, tar.gz, RAR) held in memory.
package romfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// DefaultMaxSize caps a single extracted ROM.
const DefaultMaxSize int64 = 64 * 1024 * 1024

// ErrNoROMFile is returned when no ROM file is found in an archive
var ErrNoROMFile = errors.New("no ROM file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ArchiveExtensions lists the archive filename extensions Extract understands.
var ArchiveExtensions = []string{".zip", ".7z", ".rar", ".gz", ".tgz"}

// IsArchive reports whether name has an archive extension.
func IsArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range ArchiveExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// ROM is an extracted ROM image.
type ROM struct {
	// Name is the base filename of the ROM, taken from the archive entry
	// when the source was an archive.
	Name string
	Data []byte
}

// Extractor pulls the first ROM matching one of Extensions out of a source file.
type Extractor struct {
	Extensions []string
	MaxSize    int64
}

// NewExtractor creates an Extractor. A non-positive maxSize selects DefaultMaxSize.
func NewExtractor(extensions []string, maxSize int64) *Extractor {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Extractor{Extensions: extensions, MaxSize: maxSize}
}

// Extract returns the ROM held in data. name is the source filename and is
// used for extension fallback when magic bytes are inconclusive.
func (e *Extractor) Extract(name string, data []byte) (*ROM, error) {
	switch e.detectFormat(data, name) {
	case formatRaw:
		if int64(len(data)) > e.MaxSize {
			return nil, ErrFileTooLarge
		}
		return &ROM{Name: filepath.Base(name), Data: data}, nil
	case formatZIP:
		return e.extractFromZIP(data)
	case format7z:
		return e.extractFrom7z(data)
	case formatGzip:
		return e.extractFromGzip(name, data)
	case formatRAR:
		return e.extractFromRAR(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// detectFormat checks magic bytes first, then falls back to the extension.
func (e *Extractor) detectFormat(data []byte, name string) formatType {
	if bytes.HasPrefix(data, magicZIP) || bytes.HasPrefix(data, magicZIPEnd) {
		return formatZIP
	}
	if bytes.HasPrefix(data, magicRAR) {
		return formatRAR
	}
	if bytes.HasPrefix(data, magic7z) {
		return format7z
	}
	if bytes.HasPrefix(data, magicGzip) {
		return formatGzip
	}

	lower := strings.ToLower(name)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	if e.isROMFile(lower) {
		return formatRaw
	}
	return formatUnknown
}

// isROMFile checks if a filename has one of the ROM extensions (case-insensitive)
func (e *Extractor) isROMFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range e.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to MaxSize bytes, returning an error if exceeded
func (e *Extractor) limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > e.MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
