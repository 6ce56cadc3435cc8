package gitkv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	platformerrors "github.com/jmgilman/gitkv/errors"
	"github.com/jmgilman/gitkv/git"
)

const tempDirPrefix = "gitkv-"

// ErrClosed is returned by every operation on a Repo after Close.
var ErrClosed = platformerrors.New(platformerrors.CodeClosed, "repository handle is closed")

// Repo is a key/value view of a remote git repository, backed by a private
// working copy. The zero value is not usable; create one with New.
type Repo struct {
	url    string
	dir    string
	config Config
	client git.Client
	fs     billy.Filesystem

	closeOnce sync.Once
	closed    bool
}

// New clones remoteURL into a fresh temporary directory and returns a handle
// for it. The clone is shallow unless disabled with WithShallow(false) or
// Config.Shallow. If the clone fails, the directory is removed and the error
// has code CodeCloneFailed.
func New(ctx context.Context, remoteURL string, opts ...Option) (*Repo, error) {
	if strings.TrimSpace(remoteURL) == "" {
		return nil, platformerrors.New(platformerrors.CodeInvalidInput, "remote URL is required")
	}

	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	client := o.client
	if client == nil {
		client = o.config.client()
	}

	dir, err := os.MkdirTemp(o.config.TempDir, tempDirPrefix)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to create working copy directory")
	}

	// Containment checks compare symlink-resolved paths, so the root must be
	// resolved too.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	log := clog.FromContext(ctx).With("url", remoteURL, "dir", dir)
	log.Infof("Cloning %s (shallow=%t)", remoteURL, o.config.Shallow)

	if err := client.Clone(ctx, remoteURL, dir, git.CloneOptions{Depth: o.config.cloneDepth()}); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warnf("Failed to remove working copy after clone failure: %v", rmErr)
		}
		return nil, platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeCloneFailed, "failed to clone repository"),
			"url", remoteURL,
		)
	}

	return &Repo{
		url:    remoteURL,
		dir:    dir,
		config: o.config,
		client: client,
		fs:     osfs.New(dir, osfs.WithBoundOS()),
	}, nil
}

// Close removes the working copy. It is safe to call more than once; only the
// first call does any work.
func (r *Repo) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.closed = true
		clog.FromContext(ctx).Infof("Removing working copy %s", r.dir)
		if rmErr := os.RemoveAll(r.dir); rmErr != nil {
			err = platformerrors.Wrap(rmErr, platformerrors.CodeInternal, "failed to remove working copy")
		}
	})
	return err
}

// Dir returns the working copy directory.
func (r *Repo) Dir() string {
	return r.dir
}

// URL returns the remote the handle was cloned from.
func (r *Repo) URL() string {
	return r.url
}

// Get returns the contents of the file at key. A key that does not name a
// regular file inside the repository reports false with a nil error.
func (r *Repo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p, ok, err := r.lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false, platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to read value"),
			"key", key,
		)
	}
	return data, true, nil
}

// GetFile copies the file at key to dst. If dst is an existing directory the
// file is written inside it under the key's base name; otherwise dst is
// created or overwritten. It reports false, and writes nothing, when the key
// is absent. Errors from the copy are returned as is.
func (r *Repo) GetFile(ctx context.Context, key, dst string) (bool, error) {
	p, ok, err := r.lookup(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(p))
	}

	src, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return false, err
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return false, err
	}
	return true, out.Close()
}

// Put stores value at key and publishes it. See PutReader.
func (r *Repo) Put(ctx context.Context, key string, value []byte) error {
	return r.PutReader(ctx, key, bytes.NewReader(value))
}

// PutFile stores the contents of the local file src at key and publishes
// them. An error opening or reading src is returned as is.
func (r *Repo) PutFile(ctx context.Context, key, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.PutReader(ctx, key, f)
}

// PutReader stores everything read from rd at key, commits it and pushes the
// commit. Missing parent directories are created. Writing the value a key
// already holds succeeds without creating a commit.
//
// If the push is rejected the local commit is discarded and the error has
// code CodePublishConflict; the handle stays usable and the put may be
// retried. An error reading rd is returned as is.
func (r *Repo) PutReader(ctx context.Context, key string, rd io.Reader) error {
	if r.closed {
		return ErrClosed
	}

	k, ok := normalizeKey(key)
	if !ok {
		return invalidKey(key)
	}

	if err := r.sync(ctx); err != nil {
		return err
	}

	if err := r.checkWritable(k); err != nil {
		return err
	}

	head, err := r.client.Head(ctx, r.dir)
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to record HEAD before put")
	}

	log := clog.FromContext(ctx).With("key", k)

	if err := r.write(k, rd); err != nil {
		_ = r.rollback(ctx, head)
		return err
	}

	if err := r.client.Add(ctx, r.dir, k); err != nil {
		_ = r.rollback(ctx, head)
		return platformerrors.WithContext(err, "key", k)
	}

	staged, err := r.client.HasStagedChanges(ctx, r.dir)
	if err != nil {
		_ = r.rollback(ctx, head)
		return platformerrors.WithContext(err, "key", k)
	}
	if !staged {
		log.Debugf("Value at %s is unchanged, nothing to publish", k)
		return nil
	}

	err = r.client.Commit(ctx, r.dir, git.CommitOptions{
		Author:  r.config.AuthorName,
		Email:   r.config.AuthorEmail,
		Message: commitMessage(k),
	})
	if err != nil {
		_ = r.rollback(ctx, head)
		return platformerrors.WithContext(err, "key", k)
	}

	if err := r.client.Push(ctx, r.dir); err != nil {
		log.Warnf("Push of %s rejected, rolling back to %s: %v", k, head, err)
		conflict := platformerrors.WithContextMap(
			platformerrors.Wrap(err, platformerrors.CodePublishConflict, "failed to publish put"),
			map[string]interface{}{"key": k, "url": r.url},
		)
		if rbErr := r.rollback(ctx, head); rbErr != nil {
			conflict = platformerrors.WithContext(conflict, "rollback_error", rbErr.Error())
		}
		return conflict
	}

	log.Infof("Published %s", k)
	return nil
}

func commitMessage(key string) string {
	return "gitkv: put " + key
}

func invalidKey(key string) error {
	return platformerrors.WithContext(
		platformerrors.Newf(platformerrors.CodeInvalidInput, "key %q does not name a file inside the repository", key),
		"key", key,
	)
}

// lookup synchronizes and resolves key for reading.
func (r *Repo) lookup(ctx context.Context, key string) (string, bool, error) {
	if r.closed {
		return "", false, ErrClosed
	}

	if err := r.sync(ctx); err != nil {
		return "", false, err
	}

	p, ok := resolveRead(r.dir, key)
	if !ok {
		clog.FromContext(ctx).Debugf("Key %q is absent", key)
	}
	return p, ok, nil
}

func (r *Repo) sync(ctx context.Context) error {
	if err := r.client.Pull(ctx, r.dir); err != nil {
		return platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeSyncFailed, "failed to synchronize working copy"),
			"url", r.url,
		)
	}
	return nil
}

func (r *Repo) checkWritable(k string) error {
	if !checkWrite(r.dir, k) {
		return invalidKey(k)
	}

	if info, err := os.Lstat(filepath.Join(r.dir, filepath.FromSlash(k))); err == nil && info.IsDir() {
		return platformerrors.WithContext(
			platformerrors.Newf(platformerrors.CodeInvalidInput, "key %q refers to a directory", k),
			"key", k,
		)
	}
	return nil
}

// write streams rd into the working copy at k. Errors returned by rd are
// passed through unchanged.
func (r *Repo) write(k string, rd io.Reader) error {
	name := filepath.FromSlash(k)
	if parent := path.Dir(k); parent != "." {
		if err := r.fs.MkdirAll(filepath.FromSlash(parent), 0o755); err != nil {
			return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to create parent directories")
		}
	}

	f, err := r.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to open value for writing")
	}

	if _, err := io.Copy(f, rd); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to write value")
	}
	return nil
}

// rollback restores the working copy to head and drops untracked files. It
// logs and returns the first failure.
func (r *Repo) rollback(ctx context.Context, head string) error {
	log := clog.FromContext(ctx)

	if err := r.client.ResetHard(ctx, r.dir, head); err != nil {
		log.Errorf("Failed to reset working copy to %s: %v", head, err)
		return fmt.Errorf("reset to %s: %w", head, err)
	}
	if err := r.client.Clean(ctx, r.dir); err != nil {
		log.Errorf("Failed to clean working copy: %v", err)
		return fmt.Errorf("clean: %w", err)
	}
	return nil
}
