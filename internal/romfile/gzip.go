package romfile

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// extractFromGzip handles both plain .gz and tar.gz sources.
func (e *Extractor) extractFromGzip(name string, data []byte) (*ROM, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return e.extractFromTar(gr)
	}

	// Plain .gz: the decompressed stream is the ROM, named after the source minus ".gz".
	rom, err := e.limitedRead(gr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip: %w", err)
	}

	base := filepath.Base(name)
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-3]
	}
	if !e.isROMFile(base) {
		return nil, ErrNoROMFile
	}
	return &ROM{Name: base, Data: rom}, nil
}

func (e *Extractor) extractFromTar(r io.Reader) (*ROM, error) {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !e.isROMFile(header.Name) {
			continue
		}

		rom, err := e.limitedRead(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from tar: %w", header.Name, err)
		}
		return &ROM{Name: filepath.Base(header.Name), Data: rom}, nil
	}

	return nil, ErrNoROMFile
}
