package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// MaxCatalogSize caps the decoded size of a catalog file (64 MB).
const MaxCatalogSize = 64 * 1024 * 1024

// zstdSuffix marks zstd-compressed catalog files.
const zstdSuffix = ".zst"

// LoadItems reads an item catalog (items_db.json) keyed by template id.
// Files ending in ".zst" are decompressed with zstd.
func LoadItems(path string) (*Items, error) {
	var records map[string]Item
	if err := loadJSON(path, &records); err != nil {
		return nil, fmt.Errorf("loading item catalog: %w", err)
	}
	return NewItems(records), nil
}

// LoadMonsters reads a monster catalog (combat_encounters.json) keyed by template id.
// Files ending in ".zst" are decompressed with zstd.
func LoadMonsters(path string) (*Monsters, error) {
	var records map[string]Monster
	if err := loadJSON(path, &records); err != nil {
		return nil, fmt.Errorf("loading monster catalog: %w", err)
	}
	return NewMonsters(records), nil
}

func loadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("catalog must be a regular file")
	}

	var r io.Reader = f
	if strings.HasSuffix(path, zstdSuffix) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxCatalogSize+1))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("catalog is empty")
	}
	if len(data) > MaxCatalogSize {
		return fmt.Errorf("catalog too large (max %d bytes)", MaxCatalogSize)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding JSON: %w", err)
	}
	return nil
}
