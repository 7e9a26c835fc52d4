package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/prompt"
	"github.com/konverso-ai/kbot-installer/internal/vault"
)

// NewVaultCommand creates the vault command with its subcommands.
func NewVaultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Read and write installer secrets",
		Long: `Read and write the secrets the installer resolves at run time.
The VARIABLE vault reads process environment variables, the ALIAS vault
holds in-memory values, and the NATS vault persists values in a JetStream
key-value bucket shared between installer runs.`,
	}

	cmd.PersistentFlags().String("vault", vault.EnvironmentName, "vault backend (VARIABLE, ALIAS, NATS)")
	cmd.PersistentFlags().String("nats-url", "", "NATS server URL for the NATS vault")
	cmd.PersistentFlags().String("nats-bucket", constants.DefaultVaultBucket, "NATS key-value bucket")

	cmd.AddCommand(newVaultGetCommand())
	cmd.AddCommand(newVaultSetCommand())
	cmd.AddCommand(newVaultDeleteCommand())

	return cmd
}

func newVaultGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(cmd, func(v vault.Vault) error {
				value, err := v.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Println(value)

				return nil
			})
		},
	}
}

func newVaultSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Store a value under a key",
		Long: `Store a value under a key. Without a VALUE argument the value is
prompted for, without echo, so secrets stay out of the shell history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) > 1 {
				value = args[1]
			}

			if value == "" {
				prompter := prompt.New(os.Stdin, os.Stderr)

				var err error

				value, err = prompter.AskPassword(
					fmt.Sprintf("Enter the value for %q: ", args[0]), "", false)
				if err != nil {
					return err
				}
			}

			return withVault(cmd, func(v vault.Vault) error {
				return v.Set(cmd.Context(), args[0], value)
			})
		},
	}
}

func newVaultDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(cmd, func(v vault.Vault) error {
				return v.Delete(cmd.Context(), args[0])
			})
		},
	}
}

// withVault resolves the selected vault backend, runs fn against it and
// releases any connection it holds.
func withVault(cmd *cobra.Command, fn func(vault.Vault) error) error {
	name, _ := cmd.Flags().GetString("vault")

	manager := vault.DefaultManager()

	if name == vault.NATSName {
		url, _ := cmd.Flags().GetString("nats-url")
		bucket, _ := cmd.Flags().GetString("nats-bucket")

		natsVault, err := vault.NewNATS(&vault.NATSConfig{URL: url, Bucket: bucket})
		if err != nil {
			return err
		}

		defer natsVault.Close()

		manager.Register(natsVault)
	}

	v, err := manager.Get(name)
	if err != nil {
		return err
	}

	return fn(v)
}
