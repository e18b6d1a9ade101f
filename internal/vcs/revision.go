// Package vcs reports the git revision page inputs were taken from.
package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision identifies a commit. The zero value means "not under version control".
type Revision struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
}

// IsZero reports whether no revision was found.
func (r Revision) IsZero() bool { return r.Commit == "" }

func (r Revision) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Branch == "" {
		return r.Commit
	}
	return r.Branch + "@" + r.Commit
}

// HeadRevision returns HEAD of the repository containing dir, searching parent
// directories for .git. A directory outside any repository, or a repository
// without commits, yields the zero Revision and no error.
func HeadRevision(dir string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Revision{}, nil
	}
	if err != nil {
		return Revision{}, fmt.Errorf("open repository at %s: %w", dir, err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Revision{}, nil
	}
	if err != nil {
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	rev := Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}
