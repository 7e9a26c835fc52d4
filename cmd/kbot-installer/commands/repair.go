package commands

import (
	"github.com/spf13/cobra"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// NewRepairCommand creates the repair command.
func NewRepairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [PRODUCT]",
		Short: "Repair an installed product",
		Long: `Repair a product: a missing or emptied checkout is fetched again and
the shared links of the work area are checked, relinking what points at
an existing checkout and dropping what does not.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRepair,
	}

	cmd.Flags().StringP("product", "p", "", "name of the product to repair")
	cmd.Flags().StringP("version", "v", "", "version to reinstall when the checkout is gone")
	cmd.Flags().String("providers", "", "comma-separated providers to try (nexus, github, bitbucket)")

	return cmd
}

func runRepair(cmd *cobra.Command, args []string) error {
	productName, _ := cmd.Flags().GetString("product")
	if productName == "" && len(args) > 0 {
		productName = args[0]
	}

	if productName == "" {
		return constants.ErrProductRequired
	}

	version, _ := cmd.Flags().GetString("version")
	providersFlag, _ := cmd.Flags().GetString("providers")

	providers, err := parseProviders(providersFlag)
	if err != nil {
		return err
	}

	service, err := newService(providers)
	if err != nil {
		return err
	}

	results, repairErr := service.Repair(cmd.Context(), productName, version)

	if err := renderResults(results); err != nil {
		return err
	}

	return repairErr
}
