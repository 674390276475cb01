package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"sort"
)

// SkinArchive describes a .deltaskin to build for tests.
type SkinArchive struct {
	Name       string
	Identifier string
	GameType   string // full or short game type identifier
	Portrait   bool
	Landscape  bool
	// Assets are extra archive entries, e.g. "portrait.pdf".
	Assets map[string][]byte
}

// BuildSkin returns the bytes of a .deltaskin archive for s.
func BuildSkin(s SkinArchive) []byte {
	standard := map[string]any{}
	if s.Portrait {
		standard["portrait"] = map[string]any{"assets": map[string]string{"resizable": "portrait.pdf"}}
	}
	if s.Landscape {
		standard["landscape"] = map[string]any{"assets": map[string]string{"resizable": "landscape.pdf"}}
	}
	manifest, err := json.Marshal(map[string]any{
		"name":               s.Name,
		"identifier":         s.Identifier,
		"gameTypeIdentifier": s.GameType,
		"representations": map[string]any{
			"iphone": map[string]any{"standard": standard},
		},
	})
	if err != nil {
		panic(err)
	}

	files := map[string][]byte{"info.json": manifest}
	for name, data := range s.Assets {
		files[name] = data
	}
	return BuildZip(files)
}

// BuildZip returns a zip archive containing files, written in name order.
func BuildZip(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(files[name]); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
