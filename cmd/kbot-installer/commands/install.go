package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/installer"
	"github.com/konverso-ai/kbot-installer/internal/prompt"
)

// NewInstallCommand creates the install command.
func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install [PRODUCT]",
		Aliases: []string{"installer"},
		Short:   "Install a product into the work area",
		Long: `Install a product at the given version, fetching it from the first
provider that serves it. Dependencies declared by the product are
installed too unless --no-recursive is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInstall,
	}

	cmd.Flags().StringP("product", "p", "", "name of the product to install")
	cmd.Flags().StringP("version", "v", "", "version to install (e.g. '2025.03', 'dev', 'master')")
	cmd.Flags().Bool("no-recursive", false, "skip installing product dependencies")
	cmd.Flags().Bool("force", false, "reinstall products that are already present")
	cmd.Flags().Bool("accept-license", false, "accept the license agreement without prompting")
	cmd.Flags().String("providers", "", "comma-separated providers to try (nexus, github, bitbucket)")

	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	productName, _ := cmd.Flags().GetString("product")
	if productName == "" && len(args) > 0 {
		productName = args[0]
	}

	if productName == "" {
		return constants.ErrProductRequired
	}

	version, _ := cmd.Flags().GetString("version")
	noRecursive, _ := cmd.Flags().GetBool("no-recursive")
	force, _ := cmd.Flags().GetBool("force")
	providersFlag, _ := cmd.Flags().GetString("providers")

	providers, err := parseProviders(providersFlag)
	if err != nil {
		return err
	}

	service, err := newService(providers)
	if err != nil {
		return err
	}

	licenseAccepted, _ := cmd.Flags().GetBool("accept-license")

	prompter := prompt.New(os.Stdin, os.Stderr)

	accepted, err := prompter.License(service.WorkArea(), "", licenseAccepted)
	if err != nil {
		return err
	}

	if !accepted {
		return ErrLicenseDeclined
	}

	if outputFormat() == OutputFormatTable {
		fmt.Printf("Installing product %q version %q into %q\n", productName, version, service.WorkArea())
		fmt.Printf("Using providers: %s\n", strings.Join(providers, ", "))
	}

	results, installErr := service.Install(cmd.Context(), productName, version, installer.Options{
		IncludeDependencies: !noRecursive,
		Force:               force,
	})

	if err := renderResults(results); err != nil {
		return err
	}

	return installErr
}
