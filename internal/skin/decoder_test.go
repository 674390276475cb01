package skin_test

import (
	"errors"
	"testing"

	"gbadb/internal/gba"
	"gbadb/internal/skin"
	"gbadb/internal/testutil"
)

func newDecoder(t *testing.T) *skin.Decoder {
	t.Helper()
	d, err := skin.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return d
}

func TestDecoder_Decode(t *testing.T) {
	d := newDecoder(t)

	tests := []struct {
		name             string
		archive          testutil.SkinArchive
		wantType         gba.GameType
		wantOrientations gba.Orientations
	}{
		{
			name: "gba skin with both orientations",
			archive: testutil.SkinArchive{
				Name: "Clear", Identifier: "com.example.clear", GameType: string(gba.GameTypeGBA),
				Portrait: true, Landscape: true,
			},
			wantType:         gba.GameTypeGBA,
			wantOrientations: gba.OrientationPortrait | gba.OrientationLandscape,
		},
		{
			name: "gbc portrait only",
			archive: testutil.SkinArchive{
				Name: "Pocket", Identifier: "com.example.pocket", GameType: string(gba.GameTypeGBC),
				Portrait: true,
			},
			wantType:         gba.GameTypeGBC,
			wantOrientations: gba.OrientationPortrait,
		},
		{
			name: "landscape only",
			archive: testutil.SkinArchive{
				Name: "Wide", Identifier: "com.example.wide", GameType: string(gba.GameTypeGBA),
				Landscape: true,
			},
			wantType:         gba.GameTypeGBA,
			wantOrientations: gba.OrientationLandscape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode(testutil.BuildSkin(tt.archive))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Identifier != tt.archive.Identifier || got.Name != tt.archive.Name {
				t.Errorf("Decode() = %q/%q, want %q/%q", got.Identifier, got.Name, tt.archive.Identifier, tt.archive.Name)
			}
			if got.GameType != tt.wantType {
				t.Errorf("GameType = %s, want %s", got.GameType, tt.wantType)
			}
			if got.Orientations != tt.wantOrientations {
				t.Errorf("Orientations = %s, want %s", got.Orientations, tt.wantOrientations)
			}
			if got.Standard {
				t.Error("decoded skin marked as standard")
			}
			if len(got.Manifest) == 0 {
				t.Error("Manifest is empty")
			}
		})
	}
}

func TestDecoder_Assets(t *testing.T) {
	d := newDecoder(t)
	data := testutil.BuildSkin(testutil.SkinArchive{
		Name: "Clear", Identifier: "com.example.clear", GameType: "gba", Portrait: true,
		Assets: map[string][]byte{
			"portrait.pdf":         []byte("%PDF"),
			"__MACOSX/._info.json": []byte("junk"),
		},
	})

	got, err := d.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(got.Assets["portrait.pdf"]) != "%PDF" {
		t.Errorf("Assets[portrait.pdf] = %q", got.Assets["portrait.pdf"])
	}
	if _, ok := got.Assets["info.json"]; ok {
		t.Error("manifest should not be listed as an asset")
	}
	if len(got.Assets) != 1 {
		t.Errorf("len(Assets) = %d, want 1", len(got.Assets))
	}
}

func TestDecoder_Errors(t *testing.T) {
	d := newDecoder(t)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name: "not a zip",
			data: []byte("definitely not a skin"),
		},
		{
			name:    "missing info.json",
			data:    testutil.BuildZip(map[string][]byte{"portrait.pdf": []byte("%PDF")}),
			wantErr: skin.ErrMissingInfo,
		},
		{
			name:    "malformed json",
			data:    testutil.BuildZip(map[string][]byte{"info.json": []byte("{")}),
			wantErr: skin.ErrInvalidInfo,
		},
		{
			name:    "missing identifier",
			data:    testutil.BuildZip(map[string][]byte{"info.json": []byte(`{"name":"x","gameTypeIdentifier":"gba","representations":{"iphone":{}}}`)}),
			wantErr: skin.ErrInvalidInfo,
		},
		{
			name:    "empty representations",
			data:    testutil.BuildZip(map[string][]byte{"info.json": []byte(`{"name":"x","identifier":"y","gameTypeIdentifier":"gba","representations":{}}`)}),
			wantErr: skin.ErrInvalidInfo,
		},
		{
			name: "unsupported game type",
			data: testutil.BuildSkin(testutil.SkinArchive{
				Name: "NES", Identifier: "com.example.nes", GameType: "com.rileytestut.delta.game.nes", Portrait: true,
			}),
			wantErr: gba.ErrUnsupportedGame,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decode(tt.data)
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
