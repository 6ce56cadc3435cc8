package git

import (
	"errors"
	"fmt"
	osexec "os/exec"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	platformerrors "github.com/jmgilman/gitkv/errors"
	"github.com/jmgilman/gitkv/exec"
)

var (
	errAuthorRequired  = platformerrors.New(platformerrors.CodeInvalidInput, "author is required")
	errEmailRequired   = platformerrors.New(platformerrors.CodeInvalidInput, "email is required")
	errMessageRequired = platformerrors.New(platformerrors.CodeInvalidInput, "message is required")
)

// wrapError classifies err and prefixes it with context.
// It preserves the original error chain for errors.Is/errors.As compatibility.
// If err is nil, returns nil.
func wrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", context, classifyError(err))
}

// classifyError maps go-git and exec errors to platform error codes.
// Errors that already carry a code, and errors nothing matches, are returned
// unchanged.
//
//nolint:gocyclo,cyclop // each case is a simple mapping
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var platformErr platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}

	var execErr *exec.ExecError
	if errors.As(err, &execErr) {
		return classifyExecError(execErr)
	}

	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "repository does not exist")
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "repository not found")
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "reference not found")
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "remote repository is empty")
	case errors.Is(err, gogit.ErrRemoteNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "remote not found")

	case errors.Is(err, gogit.ErrRepositoryAlreadyExists):
		return platformerrors.Wrap(err, platformerrors.CodeAlreadyExists, "repository already exists")

	case errors.Is(err, transport.ErrAuthenticationRequired):
		return platformerrors.Wrap(err, platformerrors.CodeUnauthorized, "authentication required")
	case errors.Is(err, transport.ErrAuthorizationFailed):
		return platformerrors.Wrap(err, platformerrors.CodeUnauthorized, "authorization failed")

	case errors.Is(err, gogit.ErrNonFastForwardUpdate):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "non-fast-forward update")
	case errors.Is(err, gogit.ErrForceNeeded):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "remote has diverged")
	case errors.Is(err, gogit.ErrWorktreeNotClean):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "worktree is not clean")
	case errors.Is(err, gogit.ErrEmptyCommit):
		return platformerrors.Wrap(err, platformerrors.CodeConflict, "cannot create empty commit: working tree is clean")

	case errors.Is(err, gogit.ErrMissingURL):
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "URL is required")
	case errors.Is(err, gogit.ErrMissingAuthor):
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "author is required")
	}

	return err
}

// classifyExecError converts a failed git invocation into a platform error.
// Only the exit status and the kind of failure are consulted; git's output is
// attached as context for diagnostics and never inspected.
func classifyExecError(execErr *exec.ExecError) error {
	if errors.Is(execErr, osexec.ErrNotFound) {
		return platformerrors.Wrap(execErr, platformerrors.CodeNotFound, "git executable not found")
	}

	return platformerrors.WithContextMap(
		platformerrors.Wrapf(execErr, platformerrors.CodeExecutionFailed, "git exited with status %d", execErr.ExitCode),
		map[string]interface{}{
			"command":   execErr.Command,
			"exit_code": execErr.ExitCode,
			"stderr":    execErr.Stderr,
		},
	)
}
