// Package exec runs external commands behind a small, mockable interface.
//
// gitkv drives the git command-line tool through this package. Every
// invocation blocks until the process exits; the exit status is the only
// success signal. A nonzero status is reported as an *ExecError carrying the
// exit code and captured output, and ExitCode recovers the status from any
// error chain so callers can branch on it without parsing output.
//
// # Basic Usage
//
//	cmd := exec.New(exec.WithInheritEnv())
//	result, err := cmd.WithDir(repoDir).Run("git", "pull", "--ff-only")
//	if err != nil {
//		return err
//	}
//
// # Configuration
//
// Options passed to New are global defaults. The With* methods set local
// values that apply to the next Run only and override the globals:
//
//	cmd := exec.New(exec.WithDisableColors(), exec.WithTimeout(30*time.Second))
//	result, err := cmd.WithDir("/tmp").WithContext(ctx).Run("git", "status")
//
// # Command Wrappers
//
// A CommandWrapper prepends a fixed program name to every Run:
//
//	git := exec.NewWrapper(exec.New(), "git")
//	_, err := git.WithDir(repoDir).Run("push")
//
// # Exit Status
//
//	_, err := git.WithDir(repoDir).Run("diff", "--cached", "--quiet")
//	switch exec.ExitCode(err) {
//	case 0:
//		// nothing staged
//	case 1:
//		// staged changes present
//	default:
//		// git itself failed
//	}
//
// # Logging
//
// Each invocation is logged at debug level through the clog logger carried by
// the context set with WithContext.
//
// # Testing
//
// Production code uses the concrete *Command type; tests can supply any
// implementation of the Executor interface.
package exec
