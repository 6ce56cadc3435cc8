package git

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/gitkv/errors"
	"github.com/jmgilman/gitkv/exec"
	"github.com/jmgilman/gitkv/git/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	dir     string
	timeout time.Duration
	args    []string
}

// fakeExecutor records invocations and answers them from a queue of exit
// codes. An empty queue answers with success.
type fakeExecutor struct {
	dir     string
	timeout time.Duration
	stdout  string
	exits   []int
	calls   []fakeCall
}

func (f *fakeExecutor) WithEnv(map[string]string) exec.Executor { return f }
func (f *fakeExecutor) WithDir(dir string) exec.Executor {
	f.dir = dir
	return f
}
func (f *fakeExecutor) WithContext(context.Context) exec.Executor { return f }
func (f *fakeExecutor) WithDisableColors() exec.Executor          { return f }
func (f *fakeExecutor) WithTimeout(timeout time.Duration) exec.Executor {
	f.timeout = timeout
	return f
}
func (f *fakeExecutor) WithInheritEnv() exec.Executor      { return f }
func (f *fakeExecutor) WithStdout(io.Writer) exec.Executor { return f }
func (f *fakeExecutor) WithStderr(io.Writer) exec.Executor { return f }
func (f *fakeExecutor) WithPassthrough() exec.Executor     { return f }
func (f *fakeExecutor) Clone() exec.Executor               { return f }

func (f *fakeExecutor) Run(args ...string) (*exec.Result, error) {
	f.calls = append(f.calls, fakeCall{dir: f.dir, timeout: f.timeout, args: args})
	f.dir, f.timeout = "", 0

	code := 0
	if len(f.exits) > 0 {
		code, f.exits = f.exits[0], f.exits[1:]
	}

	result := &exec.Result{Stdout: f.stdout, ExitCode: code}
	if code != 0 {
		return result, &exec.ExecError{Command: args, ExitCode: code, Err: errors.New("exit status")}
	}
	return result, nil
}

func (f *fakeExecutor) lastArgs() string {
	if len(f.calls) == 0 {
		return ""
	}
	return strings.Join(f.calls[len(f.calls)-1].args, " ")
}

func TestCLICommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *CLI) error
		want string
	}{
		{
			name: "full clone",
			call: func(c *CLI) error { return c.Clone(ctx, "file:///srv/repo", "/tmp/wc", CloneOptions{}) },
			want: "git clone -- file:///srv/repo /tmp/wc",
		},
		{
			name: "shallow clone",
			call: func(c *CLI) error { return c.Clone(ctx, "file:///srv/repo", "/tmp/wc", CloneOptions{Depth: 1}) },
			want: "git clone --depth 1 -- file:///srv/repo /tmp/wc",
		},
		{
			name: "pull",
			call: func(c *CLI) error { return c.Pull(ctx, "/tmp/wc") },
			want: "git pull --ff-only",
		},
		{
			name: "add",
			call: func(c *CLI) error { return c.Add(ctx, "/tmp/wc", "notes/todo.txt") },
			want: "git add -- notes/todo.txt",
		},
		{
			name: "commit",
			call: func(c *CLI) error {
				return c.Commit(ctx, "/tmp/wc", CommitOptions{Author: "kv", Email: "kv@localhost", Message: "gitkv: put a"})
			},
			want: "git -c user.name=kv -c user.email=kv@localhost commit --quiet -m gitkv: put a",
		},
		{
			name: "push",
			call: func(c *CLI) error { return c.Push(ctx, "/tmp/wc") },
			want: "git push origin HEAD",
		},
		{
			name: "reset",
			call: func(c *CLI) error { return c.ResetHard(ctx, "/tmp/wc", "abc123") },
			want: "git reset --hard --quiet abc123",
		},
		{
			name: "clean",
			call: func(c *CLI) error { return c.Clean(ctx, "/tmp/wc") },
			want: "git clean -f -d --quiet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{}
			c := NewCLI(WithExecutor(fake))

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.want, fake.lastArgs())
		})
	}
}

func TestCLIRunsInWorkingCopy(t *testing.T) {
	fake := &fakeExecutor{}
	c := NewCLI(WithExecutor(fake), WithBinary("/usr/local/bin/git"), WithCommandTimeout(time.Minute))

	require.NoError(t, c.Pull(context.Background(), "/tmp/wc"))
	require.NoError(t, c.Clone(context.Background(), "u", "/tmp/other", CloneOptions{}))

	require.Len(t, fake.calls, 2)
	assert.Equal(t, "/tmp/wc", fake.calls[0].dir)
	assert.Equal(t, time.Minute, fake.calls[0].timeout)
	assert.Equal(t, "/usr/local/bin/git", fake.calls[0].args[0])
	assert.Empty(t, fake.calls[1].dir, "clone runs from the current directory")
}

func TestCLIHasStagedChanges(t *testing.T) {
	tests := []struct {
		name    string
		exit    int
		want    bool
		wantErr bool
	}{
		{name: "clean index", exit: 0, want: false},
		{name: "staged changes", exit: 1, want: true},
		{name: "git failure", exit: 128, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{exits: []int{tt.exit}}
			c := NewCLI(WithExecutor(fake))

			got, err := c.HasStagedChanges(context.Background(), "/tmp/wc")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "git diff --cached --quiet", fake.lastArgs())
		})
	}
}

func TestCLIHead(t *testing.T) {
	fake := &fakeExecutor{stdout: "0123abcd\n"}
	c := NewCLI(WithExecutor(fake))

	head, err := c.Head(context.Background(), "/tmp/wc")
	require.NoError(t, err)
	assert.Equal(t, "0123abcd", head)
	assert.Equal(t, "git rev-parse HEAD", fake.lastArgs())
}

func TestCLIErrors(t *testing.T) {
	t.Run("push failure is classified", func(t *testing.T) {
		fake := &fakeExecutor{exits: []int{1}}
		c := NewCLI(WithExecutor(fake))

		err := c.Push(context.Background(), "/tmp/wc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to push to remote")
		assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))
		assert.Equal(t, 1, exec.ExitCode(err))
	})

	t.Run("commit validates before running git", func(t *testing.T) {
		fake := &fakeExecutor{}
		c := NewCLI(WithExecutor(fake))

		err := c.Commit(context.Background(), "/tmp/wc", CommitOptions{Email: "e", Message: "m"})
		assert.ErrorIs(t, err, errAuthorRequired)
		assert.Empty(t, fake.calls)
	})
}

func TestCLIIntegration(t *testing.T) {
	testutil.RequireGit(t)

	ctx := context.Background()
	remote := testutil.NewRemote(t, testutil.DefaultFiles())
	dir := filepath.Join(t.TempDir(), "wc")
	c := NewCLI()

	require.NoError(t, c.Clone(ctx, testutil.URL(remote), dir, CloneOptions{Depth: 1}))

	content, err := os.ReadFile(filepath.Join(dir, testutil.TestNestedPath))
	require.NoError(t, err)
	assert.Equal(t, testutil.TestNestedContent, string(content))

	head, err := c.Head(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, testutil.RemoteHead(t, remote), head)

	// A concurrent writer advances the remote; pull fast-forwards to it.
	testutil.CommitToRemote(t, remote, map[string]string{"other.txt": "x"}, testutil.TestCommitMessage)
	require.NoError(t, c.Pull(ctx, dir))
	_, err = os.Stat(filepath.Join(dir, "other.txt"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644))
	require.NoError(t, c.Add(ctx, dir, "new.txt"))

	staged, err := c.HasStagedChanges(ctx, dir)
	require.NoError(t, err)
	assert.True(t, staged)

	require.NoError(t, c.Commit(ctx, dir, CommitOptions{
		Author:  testutil.TestAuthor,
		Email:   testutil.TestEmail,
		Message: testutil.TestCommitMessage,
	}))
	require.NoError(t, c.Push(ctx, dir))

	got, ok := testutil.ReadRemoteFile(t, remote, "new.txt")
	require.True(t, ok)
	assert.Equal(t, "new", got)

	staged, err = c.HasStagedChanges(ctx, dir)
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestCLIIntegration_RejectedPushAndReset(t *testing.T) {
	testutil.RequireGit(t)

	ctx := context.Background()
	remote := testutil.NewRemote(t, testutil.DefaultFiles())
	dir := filepath.Join(t.TempDir(), "wc")
	c := NewCLI()

	require.NoError(t, c.Clone(ctx, testutil.URL(remote), dir, CloneOptions{}))
	before, err := c.Head(ctx, dir)
	require.NoError(t, err)

	testutil.CommitToRemote(t, remote, map[string]string{"race.txt": "theirs"}, testutil.TestCommitMessage)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "race.txt"), []byte("ours"), 0o644))
	require.NoError(t, c.Add(ctx, dir, "race.txt"))
	require.NoError(t, c.Commit(ctx, dir, CommitOptions{
		Author:  testutil.TestAuthor,
		Email:   testutil.TestEmail,
		Message: testutil.TestCommitMessage,
	}))

	err = c.Push(ctx, dir)
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))
	require.NoError(t, c.ResetHard(ctx, dir, before))
	require.NoError(t, c.Clean(ctx, dir))

	head, err := c.Head(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, before, head)
	assert.NoFileExists(t, filepath.Join(dir, "race.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "stray.txt"))
}

func TestCLIIntegration_MissingRemote(t *testing.T) {
	testutil.RequireGit(t)

	c := NewCLI()
	err := c.Clone(context.Background(), testutil.URL(filepath.Join(t.TempDir(), "absent")), filepath.Join(t.TempDir(), "wc"), CloneOptions{})
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))
}

func TestCLIMissingBinary(t *testing.T) {
	c := NewCLI(WithBinary("gitkv-no-such-git-binary"))

	err := c.Pull(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}
