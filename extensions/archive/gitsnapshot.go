package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
)

const snapshotFile = "preload.js"

// SnapshotStore keeps a git history of compiled preload scripts, so
// operators can diff or roll back what was served to clients over
// time.
type SnapshotStore struct {
	repoDir string
}

// NewSnapshotStore opens the git repository at repoDir, initializing
// one if it does not exist yet.
func NewSnapshotStore(repoDir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create snapshot directory: %w", err)
	}
	if _, err := git.PlainOpen(repoDir); err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("archive: open snapshot repo: %w", err)
		}
		if _, err := git.PlainInit(repoDir, false); err != nil {
			return nil, fmt.Errorf("archive: init snapshot repo: %w", err)
		}
	}
	return &SnapshotStore{repoDir: repoDir}, nil
}

// Save writes script to the repository's working tree and commits it
// if the content changed, returning the new commit hash (or the empty
// string if nothing changed).
func (s *SnapshotStore) Save(script string) (string, error) {
	path := filepath.Join(s.repoDir, snapshotFile)
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("archive: write snapshot: %w", err)
	}

	repo, err := git.PlainOpen(s.repoDir)
	if err != nil {
		return "", fmt.Errorf("archive: open snapshot repo: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("archive: snapshot worktree: %w", err)
	}
	if _, err := worktree.Add(snapshotFile); err != nil {
		return "", fmt.Errorf("archive: stage snapshot: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("archive: snapshot status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	signature := &object.Signature{
		Name:  "ipcbridge",
		Email: "ipcbridge@local",
		When:  time.Now(),
	}
	hash, err := worktree.Commit("preload script update", &git.CommitOptions{Author: signature})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", nil
		}
		return "", fmt.Errorf("archive: commit snapshot: %w", err)
	}
	return hash.String(), nil
}

// Latest returns the script content committed in the repository's
// working tree, or empty if none has been saved yet.
func (s *SnapshotStore) Latest() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.repoDir, snapshotFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("archive: read snapshot: %w", err)
	}
	return string(data), nil
}
