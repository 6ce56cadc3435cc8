// Package git sequences the version-control operations gitkv needs: clone,
// pull, stage, commit, push, and the reset and clean used to roll back a
// rejected push.
//
// # Clients
//
// Client is the seam between the store and the version-control tool. Two
// implementations are provided:
//
//   - CLI shells out to the git binary through the exec package. It is the
//     default. Every decision is taken from the process exit status; output
//     is kept only for diagnostics.
//   - Native performs the same operations in-process with go-git. Remotes
//     reached over HTTP or SSH need no git binary; go-git's file transport
//     still starts git's pack programs.
//
// Both operate on a working-copy directory passed to each call, so a client
// holds no per-repository state. A client is not safe for concurrent use.
//
// Example:
//
//	client := git.NewCLI(git.WithCommandTimeout(time.Minute))
//	if err := client.Clone(ctx, url, dir, git.CloneOptions{Depth: 1}); err != nil {
//	    return err
//	}
//	if err := client.Pull(ctx, dir); err != nil {
//	    return err
//	}
//
// # Shallow Clones
//
// A depth of 1 fetches only the latest commit. Pushing from such a clone
// relies on the remote accepting pushes from shallow repositories, which
// modern git servers do. Use a depth of 0 for a full clone when that
// assumption does not hold.
//
// # Errors
//
// Failures are classified into platform error codes from the errors package:
// a rejected non-fast-forward push maps to CodeConflict, a missing repository
// to CodeNotFound, authentication problems to CodeUnauthorized and any other
// failed git command to CodeExecutionFailed. The original error stays
// reachable through errors.Is and errors.As.
package git
