package constants

import "errors"

// Configuration errors.
var (
	ErrSettingsNotWritten = errors.New("settings file could not be written")
)

// Product errors.
var (
	ErrProductRequired = errors.New("product name is required, use --product or a positional argument")
)

// Output errors.
var (
	ErrUnknownOutputFormat = errors.New("unknown output format, expected table, json, or yaml")
)

// File system errors.
var (
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
	ErrNotRegularFile             = errors.New("path is not a regular file")
)
