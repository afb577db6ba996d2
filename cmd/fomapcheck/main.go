// Package main provides the entry point for the fomapcheck CLI.
//
// fomapcheck checks the object categories recorded in FOnline map files
// (.fomap) against the prototype item catalog and corrects the ones that
// disagree, one byte at a time.
//
// Usage:
//
//	fomapcheck check
//	fomapcheck check --proto ../../proto --maps ../../maps --dry-run
//	fomapcheck history
//
// See --help for all available options.
package main

// main is the entry point for fomapcheck.
func main() {
	Execute()
}
