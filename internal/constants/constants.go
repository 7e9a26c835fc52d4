package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// WorkAreaDirPerm is the permission for work-area directories and
	// extracted archive contents.
	WorkAreaDirPerm = 0755
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP dispatches.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for archive downloads.
	ExtendedHTTPTimeout = 120 * time.Second

	// ShortHTTPTimeout is used for quick existence probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Installer defaults.
const (
	// DefaultUserAgent identifies the installer on the wire.
	DefaultUserAgent = "kbot-installer"

	// DefaultVaultBucket is the NATS key-value bucket backing the NATS vault.
	DefaultVaultBucket = "kbot-vault"

	// DefaultNexusRepository is the raw repository holding product archives.
	DefaultNexusRepository = "kbot_raw"
)
