package git

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Native is a Client backed by go-git. It does not need a git binary.
type Native struct{}

// NewNative creates a go-git backed client.
func NewNative() *Native {
	return &Native{}
}

func (n *Native) open(dir string) (*gogit.Repository, *gogit.Worktree, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, nil, wrapError(err, "failed to open repository")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil, wrapError(err, "failed to get worktree")
	}

	return repo, wt, nil
}

// Clone implements Client.Clone using go-git's PlainCloneContext.
func (n *Native) Clone(ctx context.Context, url, dir string, opts CloneOptions) error {
	cloneOpts := &gogit.CloneOptions{
		URL:        url,
		RemoteName: DefaultRemote,
	}

	if opts.Depth > 0 {
		cloneOpts.Depth = opts.Depth
		cloneOpts.SingleBranch = true
	}

	if _, err := gogit.PlainCloneContext(ctx, dir, false, cloneOpts); err != nil {
		return wrapError(err, "failed to clone repository")
	}
	return nil
}

// Pull implements Client.Pull. go-git only performs fast-forward merges.
func (n *Native) Pull(ctx context.Context, dir string) error {
	_, wt, err := n.open(dir)
	if err != nil {
		return err
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{RemoteName: DefaultRemote})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return wrapError(err, "failed to pull from remote")
	}
	return nil
}

// Add implements Client.Add.
func (n *Native) Add(_ context.Context, dir, path string) error {
	_, wt, err := n.open(dir)
	if err != nil {
		return err
	}

	if _, err := wt.Add(filepath.ToSlash(path)); err != nil {
		return wrapError(err, "failed to stage path")
	}
	return nil
}

// HasStagedChanges implements Client.HasStagedChanges from the worktree
// status.
func (n *Native) HasStagedChanges(_ context.Context, dir string) (bool, error) {
	_, wt, err := n.open(dir)
	if err != nil {
		return false, err
	}

	status, err := wt.Status()
	if err != nil {
		return false, wrapError(err, "failed to get worktree status")
	}

	for _, s := range status {
		if s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// Commit implements Client.Commit.
func (n *Native) Commit(_ context.Context, dir string, opts CommitOptions) error {
	if err := opts.validate(); err != nil {
		return wrapError(err, "failed to create commit")
	}

	_, wt, err := n.open(dir)
	if err != nil {
		return err
	}

	_, err = wt.Commit(opts.Message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return wrapError(err, "failed to create commit")
	}
	return nil
}

// Push implements Client.Push.
func (n *Native) Push(ctx context.Context, dir string) error {
	repo, _, err := n.open(dir)
	if err != nil {
		return err
	}

	err = repo.PushContext(ctx, &gogit.PushOptions{RemoteName: DefaultRemote})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return wrapError(err, "failed to push to remote")
	}
	return nil
}

// Head implements Client.Head.
func (n *Native) Head(_ context.Context, dir string) (string, error) {
	repo, _, err := n.open(dir)
	if err != nil {
		return "", err
	}

	ref, err := repo.Head()
	if err != nil {
		return "", wrapError(err, "failed to resolve HEAD")
	}
	return ref.Hash().String(), nil
}

// ResetHard implements Client.ResetHard.
func (n *Native) ResetHard(_ context.Context, dir, rev string) error {
	repo, wt, err := n.open(dir)
	if err != nil {
		return err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return wrapError(err, "failed to resolve revision")
	}

	if err := wt.Reset(&gogit.ResetOptions{Commit: *hash, Mode: gogit.HardReset}); err != nil {
		return wrapError(err, "failed to reset worktree")
	}
	return nil
}

// Clean implements Client.Clean.
func (n *Native) Clean(_ context.Context, dir string) error {
	_, wt, err := n.open(dir)
	if err != nil {
		return err
	}

	if err := wt.Clean(&gogit.CleanOptions{Dir: true}); err != nil {
		return wrapError(err, "failed to clean worktree")
	}
	return nil
}

var _ Client = (*Native)(nil)
