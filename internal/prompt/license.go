package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// LicenseKeyFile marks an accepted license agreement inside the work
// area. Its presence skips the question on later runs.
const LicenseKeyFile = "license.key"

// License asks for the license agreement of the work area at target.
// licenseText is printed before the question when non-empty. accepted
// short-circuits the question, for non-interactive runs. Acceptance
// writes the marker file so the agreement is asked at most once per
// work area.
func (p *Prompter) License(target, licenseText string, accepted bool) (bool, error) {
	marker := filepath.Join(target, LicenseKeyFile)
	if _, err := os.Stat(marker); err == nil {
		return true, nil
	}

	if !accepted && !p.useDefaults {
		if licenseText != "" {
			fmt.Fprintln(p.out, licenseText)
		}

		ok, err := p.AskYN("Do you accept the license agreement?", true)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	if err := os.MkdirAll(target, constants.WorkAreaDirPerm); err != nil {
		return false, fmt.Errorf("creating work area: %w", err)
	}

	if err := os.WriteFile(marker, nil, constants.ConfigFilePerm); err != nil {
		return false, fmt.Errorf("writing license marker: %w", err)
	}

	return true, nil
}
