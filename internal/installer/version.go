package installer

// VersionToBranch maps an installer version to the git branch carrying
// it. The floating versions dev, master and main map to their branches
// directly; release versions map to release-<version>, keeping a -dev
// suffix when present:
//
//	2025.03     -> release-2025.03
//	2025.03-dev -> release-2025.03-dev
func VersionToBranch(version string) string {
	switch version {
	case "", "dev", "master", "main":
		return version
	}

	return "release-" + version
}
