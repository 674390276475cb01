// Package skin decodes .deltaskin controller skin archives.
package skin

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"gbadb/internal/gba"
)

// InfoFilename is the manifest every skin archive carries at its root.
const InfoFilename = "info.json"

// maxEntrySize caps a single decompressed archive entry.
const maxEntrySize = 32 << 20

var (
	// ErrMissingInfo means the archive has no info.json.
	ErrMissingInfo = errors.New("skin archive has no info.json")

	// ErrInvalidInfo means info.json does not satisfy the manifest schema.
	ErrInvalidInfo = errors.New("invalid skin manifest")
)

//go:embed info.schema.json
var infoSchema []byte

// Representation device and display keys used to derive orientation support.
const (
	deviceIPhone        = "iphone"
	displayTypeStandard = "standard"
)

// representations maps device -> display type -> orientation -> layout.
type representations map[string]map[string]map[string]json.RawMessage

type info struct {
	Name               string          `json:"name"`
	Identifier         string          `json:"identifier"`
	GameTypeIdentifier string          `json:"gameTypeIdentifier"`
	Representations    representations `json:"representations"`
}

// Decoder implements gba.SkinDecoder for .deltaskin archives.
type Decoder struct {
	schema *gojsonschema.Schema
}

// NewDecoder compiles the embedded manifest schema.
func NewDecoder() (*Decoder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(infoSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling skin manifest schema: %w", err)
	}
	return &Decoder{schema: schema}, nil
}

// Decode reads a skin archive. The manifest is validated before any field
// is trusted; every other entry is kept as an asset.
func (d *Decoder) Decode(data []byte) (*gba.Skin, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening skin archive: %w", err)
	}

	var manifest []byte
	assets := make(map[string][]byte)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(strings.TrimPrefix(f.Name, "/"))
		if strings.HasPrefix(name, "__MACOSX/") {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		if name == InfoFilename {
			manifest = content
			continue
		}
		assets[name] = content
	}
	if manifest == nil {
		return nil, ErrMissingInfo
	}

	if err := d.validate(manifest); err != nil {
		return nil, err
	}

	var inf info
	if err := json.Unmarshal(manifest, &inf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInfo, err)
	}

	gameType, err := gba.ParseGameType(inf.GameTypeIdentifier)
	if err != nil {
		return nil, err
	}

	return &gba.Skin{
		Identifier:   inf.Identifier,
		Name:         inf.Name,
		GameType:     gameType,
		Orientations: orientations(inf.Representations),
		Manifest:     manifest,
		Assets:       assets,
	}, nil
}

func (d *Decoder) validate(manifest []byte) error {
	res, err := d.schema.Validate(gojsonschema.NewBytesLoader(manifest))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInfo, err)
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidInfo, strings.Join(msgs, "; "))
	}
	return nil
}

func orientations(reps representations) gba.Orientations {
	var o gba.Orientations
	standard := reps[deviceIPhone][displayTypeStandard]
	if _, ok := standard["portrait"]; ok {
		o |= gba.OrientationPortrait
	}
	if _, ok := standard["landscape"]; ok {
		o |= gba.OrientationLandscape
	}
	return o
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}

var _ gba.SkinDecoder = (*Decoder)(nil)
