// Package config builds the immutable configuration record every other
// package reads from (spec.md §3 Configuration table), validating required
// fields and compiling the regex rule set once at startup.
package config

import (
	"fmt"
	"runtime"

	"github.com/clawmancat/symgen/internal/cache"
	"github.com/clawmancat/symgen/internal/rules"
)

// Config is the read-only record shared by every worker for the lifetime of
// one run; nothing in it mutates after Build returns.
type Config struct {
	LibraryName string
	InputDir    string
	OutputPath  string

	Rules *rules.RuleSet

	PluginPath string

	Concurrency int64
	UseCache    bool
	EmitOrdinal bool

	Verbose bool
	Trace   bool
}

// Raw carries the unvalidated, unparsed flag values as read off the command
// line, before Build turns them into a Config.
type Raw struct {
	LibraryName string
	InputDir    string
	OutputPath  string

	Include      string
	Exclude      string
	ForceInclude string
	ForceExclude string

	PluginPath string

	Concurrency int64
	UseCache    bool
	EmitOrdinal bool

	Verbose bool
	Trace   bool
}

// Build validates r's required fields, compiles its regex rule set, and
// fills in the hardware-concurrency default when Concurrency is unset.
func Build(r Raw) (*Config, error) {
	if r.LibraryName == "" {
		return nil, fmt.Errorf("missing required flag -lib (library name)")
	}
	if r.InputDir == "" {
		return nil, fmt.Errorf("missing required flag -i (input directory)")
	}
	if r.OutputPath == "" {
		return nil, fmt.Errorf("missing required flag -o (output .def path)")
	}

	rs, err := rules.Compile(r.Include, r.Exclude, r.ForceInclude, r.ForceExclude)
	if err != nil {
		return nil, err
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = int64(runtime.NumCPU())
	}

	return &Config{
		LibraryName: r.LibraryName,
		InputDir:    r.InputDir,
		OutputPath:  r.OutputPath,
		Rules:       rs,
		PluginPath:  r.PluginPath,
		Concurrency: concurrency,
		UseCache:    r.UseCache,
		EmitOrdinal: r.EmitOrdinal,
		Verbose:     r.Verbose,
		Trace:       r.Trace,
	}, nil
}

// CacheSettings projects the five recognized settings (spec.md §4.6) out of
// c, verbatim as configured, for use as the cache codec's comparison key.
func (c *Config) CacheSettings() cache.Settings {
	s := cache.Settings{}
	if c.Rules.Include.Raw != "" {
		s["y"] = c.Rules.Include.Raw
	}
	if c.Rules.Exclude.Raw != "" {
		s["n"] = c.Rules.Exclude.Raw
	}
	if c.Rules.ForceInclude.Raw != "" {
		s["yo"] = c.Rules.ForceInclude.Raw
	}
	if c.Rules.ForceExclude.Raw != "" {
		s["no"] = c.Rules.ForceExclude.Raw
	}
	if c.PluginPath != "" {
		s["fn"] = c.PluginPath
	}
	return s
}

// WarnFnWithCache reports whether the plugin+cache combination is active, a
// non-fatal policy warning (spec.md §7): the cache only ever records a
// boolean per symbol, not which plugin decided it, so a plugin change
// between runs can leave stale decisions behind undetected.
func (c *Config) WarnFnWithCache() bool {
	return c.PluginPath != "" && c.UseCache
}
