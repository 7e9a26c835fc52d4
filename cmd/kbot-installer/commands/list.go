package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed products",
		Long: `List the products installed in the work area. With --tree the
dependency graph is rendered instead, one block per top-level product.`,
		RunE: runList,
	}

	cmd.Flags().Bool("tree", false, "show products as a dependency tree")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	service, err := newService(defaultProviders)
	if err != nil {
		return err
	}

	collection, err := service.List(cmd.Context())
	if err != nil {
		return err
	}

	if collection.Len() == 0 {
		fmt.Println("No products installed.")

		return nil
	}

	asTree, _ := cmd.Flags().GetBool("tree")
	if asTree {
		fmt.Println(collection.Graph().Tree())

		return nil
	}

	switch format := outputFormat(); format {
	case OutputFormatJSON, OutputFormatYAML:
		return encodeStructured(format, collection.All())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Product", "Type", "Version", "Dependencies")

		for _, p := range collection.All() {
			_ = table.Append(p.Name, p.Type, p.Version, strings.Join(p.Parents, ", "))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}
