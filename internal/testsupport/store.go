package testsupport

import (
	"context"
	"testing"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSong creates a song for tests using the provided store.
func NewSong(t testing.TB, store *catalog.Store, title, artist string) *catalog.Song {
	t.Helper()

	song, err := store.AddSong(context.Background(), title, artist)
	if err != nil {
		t.Fatalf("store.AddSong: %v", err)
	}
	return song
}
