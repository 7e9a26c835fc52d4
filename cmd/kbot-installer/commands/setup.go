package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/prompt"
)

// SettingsFileName is the file setup writes into the work area.
const SettingsFileName = "settings.yml"

// NewSetupCommand creates the setup command.
func NewSetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure a work area interactively",
		Long: `Ask for the admin, database, web server and Redis settings of a work
area and write them to its settings.yml. With --defaults every question
answers itself with its default value.`,
		RunE: runSetup,
	}

	cmd.Flags().Bool("defaults", false, "accept all defaults without prompting")

	return cmd
}

func runSetup(cmd *cobra.Command, _ []string) error {
	workArea, err := workAreaDir()
	if err != nil {
		return err
	}

	var opts []prompt.Option

	if useDefaults, _ := cmd.Flags().GetBool("defaults"); useDefaults {
		opts = append(opts, prompt.WithDefaults())
	}

	prompter := prompt.New(os.Stdin, os.Stderr, opts...)

	settings, err := prompter.Setup()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(workArea, constants.WorkAreaDirPerm); err != nil {
		return fmt.Errorf("%w: %w", constants.ErrSettingsNotWritten, err)
	}

	path := filepath.Join(workArea, SettingsFileName)

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("%w: %w", constants.ErrSettingsNotWritten, err)
	}

	fmt.Printf("Settings written to %s\n", path)

	return nil
}
