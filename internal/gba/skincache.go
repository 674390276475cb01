package gba

import (
	"fmt"
	"io"
	"sync"

	"gbadb/internal/database/sqlc"
)

// SkinCache holds decoded skin resources keyed by skin identifier. Records
// never carry their decoded resource; callers ask the cache instead.
// Safe for concurrent use.
type SkinCache struct {
	assets  AssetStore
	decoder SkinDecoder

	mu      sync.Mutex
	entries map[string]*Skin
}

// NewSkinCache creates an empty cache that decodes from managed storage.
func NewSkinCache(assets AssetStore, decoder SkinDecoder) *SkinCache {
	return &SkinCache{
		assets:  assets,
		decoder: decoder,
		entries: make(map[string]*Skin),
	}
}

// Get returns the decoded resource for record, decoding it from managed
// storage on first access. Standard skins are synthesized in memory.
func (c *SkinCache) Get(record *sqlc.Skin) (*Skin, error) {
	if IsStandardSkinIdentifier(record.Identifier) {
		return StandardSkin(GameType(record.GameType)), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if skin, ok := c.entries[record.Identifier]; ok {
		return skin, nil
	}

	skin, err := c.decode(record.Filename)
	if err != nil {
		return nil, err
	}
	c.entries[record.Identifier] = skin
	return skin, nil
}

// decode reads and decodes a managed skin file without touching the cache.
func (c *SkinCache) decode(filename string) (*Skin, error) {
	rc, err := c.assets.OpenAsset(AssetSkin, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: opening skin %s: %w", ErrIO, filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading skin %s: %w", ErrIO, filename, err)
	}

	skin, err := c.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding skin %s: %w", ErrImportDecode, filename, err)
	}
	return skin, nil
}

// Invalidate drops the cached resource for identifier.
func (c *SkinCache) Invalidate(identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, identifier)
}

// Len returns the number of cached resources.
func (c *SkinCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
