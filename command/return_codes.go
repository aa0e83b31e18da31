// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package command

// Success indicates a successful command execution.
const Success int = 0

// The following error group is intended for issues within the command's execution.
const (
	// FlagParseError indicates that a command was unable to successfully parse the flags/arguments provided to it.
	FlagParseError int = iota + 16

	// ConfigError indicates that there was an error in the obfuscator configuration file.
	ConfigError

	// RunError indicates an error in the run that does not fit any of the more specific codes.
	RunError

	// StorageSetupError is returned when a storage backend client cannot be created; e.g. missing cloud credentials.
	StorageSetupError
)

// The following error group is intended for failures of the obfuscation itself.
const (
	// UnsupportedFormatError is returned when the input's file extension matches no format.
	UnsupportedFormatError int = iota + 32

	// FormatError is returned when the input cannot be decoded in its format.
	FormatError

	// StorageError is returned when the input cannot be fetched or the output cannot be stored.
	StorageError

	// OutputError indicates an error writing the run manifest.
	OutputError
)
