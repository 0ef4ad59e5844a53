package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opencontainers/go-digest"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-liquid-schemas/internal/cache"
	"github.com/goliatone/go-liquid-schemas/pkg/build"
)

func TestLoad_MissingFile(t *testing.T) {
	store, err := cache.Load(filepath.Join(t.TempDir(), "absent.cache"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Schema != cache.SchemaVersion || len(store.Digests) != 0 {
		t.Fatalf("expected empty store, got %+v", store)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "build.cache")
	want := map[string]string{
		"sections/hero.liquid": digest.FromString("hero").String(),
	}
	if err := cache.Save(path, cache.Store{Digests: want}); err != nil {
		t.Fatalf("save: %v", err)
	}

	store, err := cache.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, store.Digests); diff != "" {
		t.Fatalf("digests mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestLoad_DiscardsOtherVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.cache")
	raw, err := msgpack.Marshal(&cache.Store{Schema: cache.SchemaVersion + 1, Digests: map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := cache.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(store.Digests) != 0 {
		t.Fatalf("expected stale store to be discarded, got %+v", store)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.cache")
	if err := os.WriteFile(path, []byte{0xc1}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPersistRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.cache")

	session := build.NewSession()
	session.Remember("sections/hero.liquid", digest.FromString("hero"))
	if err := cache.Persist(path, session); err != nil {
		t.Fatalf("persist: %v", err)
	}

	restored := build.NewSession()
	if err := cache.Restore(path, restored); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, ok := restored.Digest("sections/hero.liquid")
	if !ok || got != digest.FromString("hero") {
		t.Fatalf("unexpected digest %q", got)
	}
}
