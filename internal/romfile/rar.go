package romfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
)

func (e *Extractor) extractFromRAR(data []byte) (*ROM, error) {
	r, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open rar: %w", err)
	}

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rar entry: %w", err)
		}

		if header.IsDir || !e.isROMFile(header.Name) {
			continue
		}

		rom, err := e.limitedRead(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return &ROM{Name: filepath.Base(header.Name), Data: rom}, nil
	}

	return nil, ErrNoROMFile
}
