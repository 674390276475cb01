package romfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
)

func (e *Extractor) extractFromZIP(data []byte) (*ROM, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !e.isROMFile(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		defer rc.Close()

		rom, err := e.limitedRead(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return &ROM{Name: filepath.Base(f.Name), Data: rom}, nil
	}

	return nil, ErrNoROMFile
}
