package archive

import (
	"path/filepath"
	"testing"
)

func TestSnapshotStoreSaveAndLatest(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(filepath.Join(dir, "repo"))
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	hash, err := store.Save("console.log('v1')")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if hash == "" {
		t.Fatal("first Save should produce a commit hash")
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != "console.log('v1')" {
		t.Errorf("Latest() = %q", latest)
	}
}

func TestSnapshotStoreUnchangedContentSkipsCommit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(filepath.Join(dir, "repo"))
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	if _, err := store.Save("same"); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	hash, err := store.Save("same")
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if hash != "" {
		t.Errorf("Save with unchanged content should report no new commit, got %q", hash)
	}
}

func TestSnapshotStoreLatestEmptyBeforeFirstSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(filepath.Join(dir, "repo"))
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != "" {
		t.Errorf("Latest() before any Save = %q, want empty", latest)
	}
}
