package testsupport

import (
	"context"
	"testing"

	"wares/internal/config"
	"wares/internal/draftstore"
)

// MustOpenStore opens a draftstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *draftstore.Store {
	t.Helper()

	store, err := draftstore.Open(cfg)
	if err != nil {
		t.Fatalf("draftstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewDraft creates a minimal named draft in the store.
func NewDraft(t testing.TB, store *draftstore.Store, name string) *draftstore.Draft {
	t.Helper()

	draft, err := store.Create(context.Background(), &draftstore.Draft{Name: name})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return draft
}
