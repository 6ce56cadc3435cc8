// Package testutil provides fixtures for tests that need a real remote
// repository. Remotes are bare repositories on disk, seeded through an
// in-memory go-git working copy. go-git's file transport starts git's pack
// programs, so every fixture skips the test when git is not installed.
package testutil

import (
	"errors"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

// GitAvailable reports whether the git CLI is on PATH.
func GitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// RequireGit skips the test if the git CLI is not available.
func RequireGit(t *testing.T) {
	t.Helper()
	if !GitAvailable() {
		t.Skip("git CLI not available, skipping test")
	}
}

// URL returns a file:// URL for a repository directory.
func URL(dir string) string {
	return "file://" + filepath.ToSlash(dir)
}

// NewRemote creates a bare repository in a test temp directory with a single
// commit containing files. Keys are slash-separated paths. It returns the
// directory of the bare repository.
func NewRemote(t *testing.T, files map[string]string) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, true)
	require.NoError(t, err, "failed to init bare remote")

	fs := memfs.New()
	repo, err := gogit.Init(memory.NewStorage(), fs)
	require.NoError(t, err, "failed to init seed repository")

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: gogit.DefaultRemoteName,
		URLs: []string{dir},
	})
	require.NoError(t, err, "failed to add remote")

	commitFiles(t, repo, fs, files, TestAuthor, TestEmail, TestInitialCommit)
	require.NoError(t, repo.Push(&gogit.PushOptions{}), "failed to seed remote")

	return dir
}

// CommitToRemote publishes files to the remote as a separate writer would:
// clone, write, commit and push. It returns the new head revision.
func CommitToRemote(t *testing.T, remote string, files map[string]string, message string) string {
	t.Helper()

	fs := memfs.New()
	repo, err := gogit.Clone(memory.NewStorage(), fs, &gogit.CloneOptions{URL: remote})
	require.NoError(t, err, "failed to clone remote")

	hash := commitFiles(t, repo, fs, files, TestAuthor2, TestEmail2, message)
	require.NoError(t, repo.Push(&gogit.PushOptions{}), "failed to push to remote")

	return hash
}

// ReadRemoteFile returns the content of path at the remote's HEAD and
// whether it exists.
func ReadRemoteFile(t *testing.T, remote, path string) (string, bool) {
	t.Helper()

	repo, err := gogit.PlainOpen(remote)
	require.NoError(t, err, "failed to open remote")

	ref, err := repo.Head()
	require.NoError(t, err, "failed to resolve remote HEAD")

	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err, "failed to read remote HEAD commit")

	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", false
	}
	require.NoError(t, err, "failed to look up %s", path)

	content, err := file.Contents()
	require.NoError(t, err, "failed to read %s", path)

	return content, true
}

// RemoteHead returns the remote's HEAD revision.
func RemoteHead(t *testing.T, remote string) string {
	t.Helper()

	repo, err := gogit.PlainOpen(remote)
	require.NoError(t, err, "failed to open remote")

	ref, err := repo.Head()
	require.NoError(t, err, "failed to resolve remote HEAD")

	return ref.Hash().String()
}

// RemoteHeadMessage returns the message of the commit at the remote's HEAD.
func RemoteHeadMessage(t *testing.T, remote string) string {
	t.Helper()

	repo, err := gogit.PlainOpen(remote)
	require.NoError(t, err, "failed to open remote")

	ref, err := repo.Head()
	require.NoError(t, err, "failed to resolve remote HEAD")

	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err, "failed to read remote HEAD commit")

	return commit.Message
}

// CommitCount returns the number of commits reachable from the remote's HEAD.
func CommitCount(t *testing.T, remote string) int {
	t.Helper()

	repo, err := gogit.PlainOpen(remote)
	require.NoError(t, err, "failed to open remote")

	iter, err := repo.Log(&gogit.LogOptions{})
	require.NoError(t, err, "failed to read remote log")

	count := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	}))

	return count
}

func commitFiles(t *testing.T, repo *gogit.Repository, fs billy.Filesystem, files map[string]string, name, email, message string) string {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if dir := filepath.Dir(filepath.FromSlash(p)); dir != "." {
			require.NoError(t, fs.MkdirAll(dir, 0o755))
		}
		require.NoError(t, util.WriteFile(fs, p, []byte(files[p]), 0o644), "failed to write %s", p)
		_, err := wt.Add(p)
		require.NoError(t, err, "failed to stage %s", p)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:            &object.Signature{Name: name, Email: email, When: time.Now()},
		AllowEmptyCommits: len(files) == 0,
	})
	require.NoError(t, err, "failed to commit")

	return hash.String()
}
