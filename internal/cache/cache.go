// Package cache persists the output digests of a build session between CLI
// runs so unchanged outputs are not rewritten.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-liquid-schemas/pkg/build"
)

// SchemaVersion is bumped whenever the Store layout changes. Stores written
// with another version are discarded on load.
const SchemaVersion uint16 = 1

// Store is the on-disk cache payload.
type Store struct {
	Schema  uint16
	Digests map[string]string
}

// Load reads the store at path. A missing file or a store from another
// schema version yields an empty store.
func Load(path string) (Store, error) {
	empty := Store{Schema: SchemaVersion, Digests: map[string]string{}}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return Store{}, fmt.Errorf("cache: open %s: %w", path, err)
	}
	defer f.Close()

	var store Store
	if err := msgpack.NewDecoder(f).Decode(&store); err != nil {
		return Store{}, fmt.Errorf("cache: decode %s: %w", path, err)
	}
	if store.Schema != SchemaVersion {
		return empty, nil
	}
	if store.Digests == nil {
		store.Digests = map[string]string{}
	}
	return store, nil
}

// Save writes store to path atomically.
func Save(path string, store Store) error {
	store.Schema = SchemaVersion

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&store); err != nil {
		f.Close()
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cache: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: replace %s: %w", path, err)
	}
	return nil
}

// Restore loads path into session.
func Restore(path string, session *build.Session) error {
	store, err := Load(path)
	if err != nil {
		return err
	}
	if err := session.Restore(store.Digests); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Persist saves the digests recorded by session to path.
func Persist(path string, session *build.Session) error {
	return Save(path, Store{Digests: session.Snapshot()})
}
