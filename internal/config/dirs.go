package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables, path files and fallbacks for the two directories.
const (
	EnvProtoPath = "PROTO_PATH"
	EnvMapsPath  = "MAPS_PATH"

	ProtoPathFile = "proto_path.cfg"
	MapsPathFile  = "maps_path.cfg"

	FallbackProtoDir = "../../proto"
	FallbackMapsDir  = "../../maps"
)

// DirSource names where a resolved directory came from.
type DirSource string

// Directory sources in resolution order.
const (
	SourceFlag       DirSource = "flag"
	SourceEnv        DirSource = "environment"
	SourcePathFile   DirSource = "path file"
	SourceConfigFile DirSource = "config file"
	SourceFallback   DirSource = "fallback"
)

// DirSpec describes the candidates for one directory.
type DirSpec struct {
	// Name is used in error messages, e.g. "proto".
	Name string

	// Flag is the value given on the command line, if any.
	Flag string

	// EnvVar is the environment variable to consult.
	EnvVar string

	// PathFile is a file in the working directory holding a single path.
	PathFile string

	// ConfigValue is the value from the configuration file, if any.
	ConfigValue string

	// Fallback is tried last.
	Fallback string
}

// ProtoDirSpec returns the candidates for the prototype catalog root.
func (c *Config) ProtoDirSpec() DirSpec {
	spec := DirSpec{
		Name:     "proto",
		Flag:     c.ProtoDir,
		EnvVar:   EnvProtoPath,
		PathFile: ProtoPathFile,
		Fallback: FallbackProtoDir,
	}
	if c.File != nil {
		spec.ConfigValue = c.File.ProtoPath
	}
	return spec
}

// MapsDirSpec returns the candidates for the map directory.
func (c *Config) MapsDirSpec() DirSpec {
	spec := DirSpec{
		Name:     "maps",
		Flag:     c.MapsDir,
		EnvVar:   EnvMapsPath,
		PathFile: MapsPathFile,
		Fallback: FallbackMapsDir,
	}
	if c.File != nil {
		spec.ConfigValue = c.File.MapsPath
	}
	return spec
}

// Resolver resolves directories against a working directory and an
// environment lookup.
type Resolver struct {
	// WorkDir is the base for relative candidates and path files.
	WorkDir string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewResolver returns a Resolver for the process working directory and
// environment.
func NewResolver() (*Resolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return &Resolver{WorkDir: wd, Getenv: os.Getenv}, nil
}

// ResolveDir returns the canonical path of the first candidate of spec
// that names an existing directory, trying in order: the flag, the
// environment variable, the path file in the working directory, the
// configuration file value and the fallback. Empty candidates are skipped.
// A candidate that cannot be canonicalized falls through to the next; if
// none resolves, the error wraps ErrDirNotFound and names the last failure.
func (r *Resolver) ResolveDir(spec DirSpec) (string, DirSource, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	type candidate struct {
		source DirSource
		path   string
	}
	candidates := []candidate{
		{SourceFlag, spec.Flag},
		{SourceEnv, getenv(spec.EnvVar)},
		{SourcePathFile, r.readPathFile(spec.PathFile)},
		{SourceConfigFile, spec.ConfigValue},
		{SourceFallback, spec.Fallback},
	}

	var lastErr error
	for _, c := range candidates {
		if c.path == "" {
			continue
		}
		dir, err := r.canonicalize(c.path)
		if err != nil {
			lastErr = fmt.Errorf("%s %q: %w", c.source, c.path, err)
			continue
		}
		return dir, c.source, nil
	}

	if lastErr == nil {
		return "", "", fmt.Errorf("%w: %s: no candidate", ErrDirNotFound, spec.Name)
	}
	return "", "", fmt.Errorf("%w: %s: %w", ErrDirNotFound, spec.Name, lastErr)
}

// readPathFile returns the trimmed content of name in the working
// directory, or "" when it cannot be read.
func (r *Resolver) readPathFile(name string) string {
	if name == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(r.WorkDir, name)) //nolint:gosec // fixed file name
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// canonicalize returns the absolute, symlink-free form of p, which must be
// an existing directory.
func (r *Resolver) canonicalize(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.WorkDir, p)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", resolved)
	}
	return filepath.Clean(resolved), nil
}
