package git

import (
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// DetachedBranch is the branch name reported when HEAD is detached.
const DetachedBranch = "HEAD"

// State is the checked-out position of a repository.
type State struct {
	Repository string
	Branch     string
	Commit     string
	Detached   bool
}

// ReadState opens the repository containing repoPath and resolves HEAD.
func ReadState(repoPath string) (State, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return State{}, ClassifyGitError(err, "abs", repoPath)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return State{}, ClassifyGitError(err, "open", abs)
	}

	head, err := repo.Head()
	if err != nil {
		return State{}, ClassifyGitError(err, "head", abs)
	}

	st := State{
		Repository: abs,
		Commit:     head.Hash().String(),
	}
	if head.Name().IsBranch() {
		st.Branch = head.Name().Short()
	} else {
		st.Branch = DetachedBranch
		st.Detached = true
	}

	slog.Debug("Read git state",
		logfields.Repository(abs),
		logfields.Branch(st.Branch),
		logfields.Commit(st.Commit))
	return st, nil
}

// Event converts the state to a GitStateSet event.
func (s State) Event(ctx foundation.Option[rfc.EventContext]) rfc.GitStateSet {
	return rfc.GitStateSet{BranchName: s.Branch, CommitID: s.Commit, EventContext: ctx}
}

// StateEvents reads the repository state and wraps the GitStateSet event in a
// batch commit with the given message.
func StateEvents(repoPath, message string, ctx foundation.Option[rfc.EventContext]) (State, []rfc.Event, error) {
	st, err := ReadState(repoPath)
	if err != nil {
		return State{}, nil, err
	}
	return st, rfc.NewBatch(message, ctx, st.Event(ctx)), nil
}
