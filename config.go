package gitkv

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"

	platformerrors "github.com/jmgilman/gitkv/errors"
	"github.com/jmgilman/gitkv/git"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "GITKV_"

// Backend selects the git.Client implementation.
type Backend string

const (
	// BackendCLI runs the git command-line tool.
	BackendCLI Backend = "cli"

	// BackendNative uses go-git in-process.
	BackendNative Backend = "native"
)

// Config holds the settings of a Repo.
type Config struct {
	// Shallow clones with depth 1. The choice is fixed for the lifetime of
	// a handle.
	Shallow bool `env:"SHALLOW,default=true"`

	Backend   Backend `env:"BACKEND,default=cli"`
	GitBinary string  `env:"GIT_BINARY,default=git"`

	AuthorName  string `env:"AUTHOR_NAME,default=gitkv"`
	AuthorEmail string `env:"AUTHOR_EMAIL,default=gitkv@localhost"`

	// TempDir is the parent of working copies. Empty means os.TempDir.
	TempDir string `env:"TEMP_DIR"`

	// CommandTimeout bounds each git invocation of the CLI backend.
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT"`

	// Verbose streams git's output to the process stdout and stderr.
	Verbose bool `env:"VERBOSE,default=false"`
}

// DefaultConfig returns the defaults LoadConfig uses when no variables are
// set.
func DefaultConfig() Config {
	return Config{
		Shallow:     true,
		Backend:     BackendCLI,
		GitBinary:   "git",
		AuthorName:  "gitkv",
		AuthorEmail: "gitkv@localhost",
	}
}

// LoadConfig reads a Config from GITKV_* environment variables.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return Config{}, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "failed to process environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Backend != BackendCLI && c.Backend != BackendNative:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "unknown backend %q", c.Backend)
	case c.Backend == BackendCLI && c.GitBinary == "":
		return platformerrors.New(platformerrors.CodeInvalidConfig, "git binary is required for the cli backend")
	case c.AuthorName == "":
		return platformerrors.New(platformerrors.CodeInvalidConfig, "author name is required")
	case c.AuthorEmail == "":
		return platformerrors.New(platformerrors.CodeInvalidConfig, "author email is required")
	case c.CommandTimeout < 0:
		return platformerrors.New(platformerrors.CodeInvalidConfig, "command timeout cannot be negative")
	}
	return nil
}

// client builds the git.Client the config selects.
func (c Config) client() git.Client {
	if c.Backend == BackendNative {
		return git.NewNative()
	}

	opts := []git.CLIOption{git.WithBinary(c.GitBinary)}
	if c.CommandTimeout > 0 {
		opts = append(opts, git.WithCommandTimeout(c.CommandTimeout))
	}
	if c.Verbose {
		opts = append(opts, git.WithPassthrough())
	}
	return git.NewCLI(opts...)
}

// cloneDepth maps Shallow to a clone depth.
func (c Config) cloneDepth() int {
	if c.Shallow {
		return 1
	}
	return 0
}
