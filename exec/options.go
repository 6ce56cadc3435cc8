package exec

import (
	"context"
	"time"
)

// config separates global settings (set by New) from local settings that
// apply to a single Run and override the globals.
type config struct {
	globalEnv           map[string]string
	globalDir           string
	globalInheritEnv    bool
	globalDisableColors bool
	globalPassthrough   bool
	globalTimeout       time.Duration

	localEnv           map[string]string
	localDir           string
	localCtx           context.Context
	localInheritEnv    *bool
	localDisableColors *bool
	localPassthrough   *bool
	localTimeout       *time.Duration
}

func newConfig() *config {
	return &config{
		globalEnv: make(map[string]string),
		localEnv:  make(map[string]string),
	}
}

// clone copies the global settings. Local settings are per-Run and are not
// carried into the copy.
func (c *config) clone() *config {
	clone := &config{
		globalEnv:           make(map[string]string, len(c.globalEnv)),
		globalDir:           c.globalDir,
		globalInheritEnv:    c.globalInheritEnv,
		globalDisableColors: c.globalDisableColors,
		globalPassthrough:   c.globalPassthrough,
		globalTimeout:       c.globalTimeout,
		localEnv:            make(map[string]string),
	}

	for k, v := range c.globalEnv {
		clone.globalEnv[k] = v
	}

	return clone
}

// effectiveEnv merges global and local variables. Local values win.
func (c *config) effectiveEnv() map[string]string {
	env := make(map[string]string, len(c.globalEnv)+len(c.localEnv))

	for k, v := range c.globalEnv {
		env[k] = v
	}
	for k, v := range c.localEnv {
		env[k] = v
	}

	if c.effectiveDisableColors() {
		env["NO_COLOR"] = "1"
		env["TERM"] = "dumb"
		env["CLICOLOR"] = "0"
		env["CLICOLOR_FORCE"] = "0"
		env["FORCE_COLOR"] = "0"
	}

	return env
}

func (c *config) effectiveDir() string {
	if c.localDir != "" {
		return c.localDir
	}
	return c.globalDir
}

func (c *config) effectiveInheritEnv() bool {
	if c.localInheritEnv != nil {
		return *c.localInheritEnv
	}
	return c.globalInheritEnv
}

func (c *config) effectiveDisableColors() bool {
	if c.localDisableColors != nil {
		return *c.localDisableColors
	}
	return c.globalDisableColors
}

func (c *config) effectivePassthrough() bool {
	if c.localPassthrough != nil {
		return *c.localPassthrough
	}
	return c.globalPassthrough
}

func (c *config) effectiveTimeout() time.Duration {
	if c.localTimeout != nil {
		return *c.localTimeout
	}
	return c.globalTimeout
}

// resetLocal clears all local settings. Run calls it when it returns.
func (c *config) resetLocal() {
	c.localEnv = make(map[string]string)
	c.localDir = ""
	c.localCtx = nil
	c.localInheritEnv = nil
	c.localDisableColors = nil
	c.localPassthrough = nil
	c.localTimeout = nil
}
