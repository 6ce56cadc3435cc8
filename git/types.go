package git

import "context"

// DefaultRemote is the remote name every client pulls from and pushes to.
const DefaultRemote = "origin"

// Client performs version-control operations on a working copy.
//
// Every method except Clone takes the working-copy directory as dir. Methods
// block until the operation finishes or ctx is canceled.
type Client interface {
	// Clone clones url into dir. dir must be empty or absent.
	Clone(ctx context.Context, url, dir string, opts CloneOptions) error

	// Pull fast-forwards the current branch to the remote's latest state.
	Pull(ctx context.Context, dir string) error

	// Add stages path, given relative to dir.
	Add(ctx context.Context, dir, path string) error

	// HasStagedChanges reports whether the index differs from HEAD.
	HasStagedChanges(ctx context.Context, dir string) (bool, error)

	// Commit records the staged changes.
	Commit(ctx context.Context, dir string, opts CommitOptions) error

	// Push transmits the current branch to the remote.
	Push(ctx context.Context, dir string) error

	// Head returns the commit hash HEAD points to.
	Head(ctx context.Context, dir string) (string, error)

	// ResetHard moves the current branch to rev and discards changes to
	// tracked files.
	ResetHard(ctx context.Context, dir, rev string) error

	// Clean removes untracked files and directories.
	Clean(ctx context.Context, dir string) error
}

// CloneOptions configures clone operations.
type CloneOptions struct {
	Depth int // 0 for full clone, >0 for shallow clone
}

// CommitOptions configures commit creation.
type CommitOptions struct {
	Author  string
	Email   string
	Message string
}

func (o CommitOptions) validate() error {
	switch {
	case o.Author == "":
		return errAuthorRequired
	case o.Email == "":
		return errEmailRequired
	case o.Message == "":
		return errMessageRequired
	}
	return nil
}
