package git

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmgilman/gitkv/exec"
)

// CLI is a Client that runs the git command-line tool.
type CLI struct {
	executor    exec.Executor
	binary      string
	timeout     time.Duration
	passthrough bool
}

// CLIOption configures a CLI client.
type CLIOption func(*CLI)

// WithExecutor sets the executor used to start git. Tests use it to inject
// a fake; the default inherits the parent environment with colors disabled
// and terminal prompts turned off.
func WithExecutor(executor exec.Executor) CLIOption {
	return func(c *CLI) {
		c.executor = executor
	}
}

// WithBinary sets the git executable name or path. Defaults to "git".
func WithBinary(binary string) CLIOption {
	return func(c *CLI) {
		c.binary = binary
	}
}

// WithCommandTimeout bounds every git invocation. Zero, the default, means
// no timeout.
func WithCommandTimeout(timeout time.Duration) CLIOption {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// WithPassthrough streams git's output to the process stdout and stderr.
func WithPassthrough() CLIOption {
	return func(c *CLI) {
		c.passthrough = true
	}
}

// NewCLI creates a CLI client.
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{binary: "git"}
	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		c.executor = exec.New(
			exec.WithInheritEnv(),
			exec.WithDisableColors(),
			exec.WithEnv(map[string]string{"GIT_TERMINAL_PROMPT": "0"}),
		)
	}

	return c
}

// run invokes git with args inside dir. An empty dir uses the current
// directory.
func (c *CLI) run(ctx context.Context, dir string, args ...string) (*exec.Result, error) {
	var git exec.Executor = exec.NewWrapper(c.executor, c.binary)
	git = git.WithContext(ctx)
	if dir != "" {
		git = git.WithDir(dir)
	}
	if c.timeout > 0 {
		git = git.WithTimeout(c.timeout)
	}
	if c.passthrough {
		git = git.WithPassthrough()
	}

	//nolint:wrapcheck // callers classify exec errors through wrapError
	return git.Run(args...)
}

// Clone runs 'git clone'. A positive depth adds --depth, which implies
// --single-branch.
func (c *CLI) Clone(ctx context.Context, url, dir string, opts CloneOptions) error {
	args := []string{"clone"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	args = append(args, "--", url, dir)

	if _, err := c.run(ctx, "", args...); err != nil {
		return wrapError(err, "failed to clone repository")
	}
	return nil
}

// Pull runs 'git pull --ff-only'.
func (c *CLI) Pull(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "pull", "--ff-only"); err != nil {
		return wrapError(err, "failed to pull from remote")
	}
	return nil
}

// Add runs 'git add -- path'.
func (c *CLI) Add(ctx context.Context, dir, path string) error {
	if _, err := c.run(ctx, dir, "add", "--", path); err != nil {
		return wrapError(err, "failed to stage path")
	}
	return nil
}

// HasStagedChanges runs 'git diff --cached --quiet', which exits 1 when the
// index differs from HEAD and 0 when it does not.
func (c *CLI) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	_, err := c.run(ctx, dir, "diff", "--cached", "--quiet")
	switch exec.ExitCode(err) {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, wrapError(err, "failed to inspect index")
	}
}

// Commit runs 'git commit' with the author supplied through -c so the
// operator's git configuration is not required.
func (c *CLI) Commit(ctx context.Context, dir string, opts CommitOptions) error {
	if err := opts.validate(); err != nil {
		return wrapError(err, "failed to create commit")
	}

	_, err := c.run(ctx, dir,
		"-c", "user.name="+opts.Author,
		"-c", "user.email="+opts.Email,
		"commit", "--quiet", "-m", opts.Message,
	)
	if err != nil {
		return wrapError(err, "failed to create commit")
	}
	return nil
}

// Push runs 'git push origin HEAD'.
func (c *CLI) Push(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "push", DefaultRemote, "HEAD"); err != nil {
		return wrapError(err, "failed to push to remote")
	}
	return nil
}

// Head runs 'git rev-parse HEAD'.
func (c *CLI) Head(ctx context.Context, dir string) (string, error) {
	result, err := c.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", wrapError(err, "failed to resolve HEAD")
	}
	return strings.TrimSpace(result.Stdout), nil
}

// ResetHard runs 'git reset --hard rev'.
func (c *CLI) ResetHard(ctx context.Context, dir, rev string) error {
	if _, err := c.run(ctx, dir, "reset", "--hard", "--quiet", rev); err != nil {
		return wrapError(err, "failed to reset worktree")
	}
	return nil
}

// Clean runs 'git clean -f -d'.
func (c *CLI) Clean(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "clean", "-f", "-d", "--quiet"); err != nil {
		return wrapError(err, "failed to clean worktree")
	}
	return nil
}

var _ Client = (*CLI)(nil)
