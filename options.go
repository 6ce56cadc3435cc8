package gitkv

import "github.com/jmgilman/gitkv/git"

// Option configures a Repo.
type Option func(*options)

type options struct {
	config Config
	client git.Client
}

// WithConfig replaces the whole configuration. Options applied after it
// still take effect.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithShallow chooses between a depth-1 and a full clone.
func WithShallow(shallow bool) Option {
	return func(o *options) {
		o.config.Shallow = shallow
	}
}

// WithClient uses client instead of the one Config.Backend selects.
func WithClient(client git.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithAuthor sets the identity recorded on commits.
func WithAuthor(name, email string) Option {
	return func(o *options) {
		o.config.AuthorName = name
		o.config.AuthorEmail = email
	}
}

// WithTempDir sets the parent directory of the working copy.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.config.TempDir = dir
	}
}
