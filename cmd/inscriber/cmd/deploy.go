package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethinscribe/inscriber/internal/protocol"
)

// DeployCmd represents the deploy command
var DeployCmd = &cobra.Command{
	Use:   "deploy <message>",
	Args:  cobra.ExactArgs(1),
	Short: "Send a single deploy inscription",
	Long: `Send a single deploy inscription.

The message must be a valid JSON deploy operation, for example:
  {"p":"erc-20","op":"deploy","tick":"gwei","max":"21000000","lim":"1000"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg protocol.Deploy
		if err := protocol.DecodePayload(args[0], &msg); err != nil {
			return fmt.Errorf("invalid deploy message: %w", err)
		}

		calldata, err := msg.Calldata()
		if err != nil {
			return fmt.Errorf("failed to encode deploy message: %w", err)
		}

		// a deploy is a one-shot run
		if err := cmd.Flags().Set(TransactionsFlagName, "1"); err != nil {
			return err
		}
		if err := cmd.Flags().Set(ConcurrencyFlagName, "1"); err != nil {
			return err
		}

		runInscriber(cmd, calldata)
		return nil
	},
}

func init() {
	DeployCmd.Flags().Uint64(TransactionsFlagName, 1, "")
	DeployCmd.Flags().Uint64(ConcurrencyFlagName, 1, "")
	_ = DeployCmd.Flags().MarkHidden(TransactionsFlagName)
	_ = DeployCmd.Flags().MarkHidden(ConcurrencyFlagName)
	DeployCmd.Flags().String(PrivateKeyFlagName, "", "hex private key to sign with (overrides INSCRIBER_PRIVATE_KEY)")
	DeployCmd.Flags().String(RPCURLFlagName, "", "JSON-RPC endpoint (overrides INSCRIBER_CHAIN_RPC_ADDRESS)")
	DeployCmd.Flags().Bool(YesFlagName, false, "skip the mainnet acknowledgement prompt")
	rootCmd.AddCommand(DeployCmd)
}
