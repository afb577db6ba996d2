// Package config provides the configuration of a check run: where the
// prototype catalog and maps live, how many workers to use, where reports
// go and whether files are written at all.
//
// Directories are resolved from several sources in a fixed order (see
// ResolveDir). Other settings come from CLI flags, optionally defaulted by
// a .fomapcheck YAML file.
package config
