package git

import (
	stderrors "errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

var (
	// ErrNotRepository indicates the path is not inside a git repository.
	ErrNotRepository = errors.NotFoundError("not a git repository").Build()

	// ErrEmptyRepository indicates the repository has no commits yet.
	ErrEmptyRepository = errors.GitError("repository has no commits").Build()
)

// NotRepositoryError reports a path without a git repository.
type NotRepositoryError struct {
	Path string
	Err  error
}

func (e *NotRepositoryError) Error() string {
	return fmt.Sprintf("%s is not a git repository: %v", e.Path, e.Err)
}

func (e *NotRepositoryError) Unwrap() []error { return []error{ErrNotRepository, e.Err} }

// EmptyRepositoryError reports a repository whose HEAD does not resolve to a commit.
type EmptyRepositoryError struct {
	Path string
}

func (e *EmptyRepositoryError) Error() string {
	return fmt.Sprintf("repository %s has no commits", e.Path)
}

func (e *EmptyRepositoryError) Unwrap() error { return ErrEmptyRepository }

// ClassifyGitError translates go-git errors into typed or classified errors.
func ClassifyGitError(err error, op, path string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, git.ErrRepositoryNotExists):
		return &NotRepositoryError{Path: path, Err: err}
	case stderrors.Is(err, plumbing.ErrReferenceNotFound):
		return &EmptyRepositoryError{Path: path}
	default:
		return errors.WrapError(err, errors.CategoryGit, "git operation failed").
			WithContext("op", op).
			WithContext("path", path).
			Build()
	}
}
