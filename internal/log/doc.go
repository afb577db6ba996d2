// Package log builds the application's slog loggers.
//
// PathHandler wraps any slog.Handler and shortens absolute paths under the
// configured roots (the maps and prototype directories) to
// "<root name>/<relative path>", so debug output for hundreds of maps stays
// readable:
//
//	logger := log.NewLogger(os.Stderr, verbose, mapsDir, protoDir)
//	logger.Debug("map patched", "path", "/data/maps/desert.fomap")
//	// ... path=maps/desert.fomap
//
// Loggers log at Warn by default and at Debug in verbose mode.
package log
