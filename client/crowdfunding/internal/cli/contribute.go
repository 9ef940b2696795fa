package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func campaignFlag(cmd *cobra.Command) (solana.PublicKey, error) {
	value, err := cmd.Flags().GetString("campaign")
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get campaign flag: %w", err)
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid campaign address %q: %w", value, err)
	}
	return pk, nil
}

func (a *App) contributeCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Transfer lamports from the signer to an active campaign.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			campaign, err := campaignFlag(cmd)
			if err != nil {
				return err
			}
			amount, err := cmd.Flags().GetUint64("amount")
			if err != nil {
				return fmt.Errorf("failed to get amount flag: %w", err)
			}

			s, err := a.newSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			sig, _, err := s.client.Contribute(s.ctx, campaign, amount)
			if err != nil {
				return fmt.Errorf("failed to contribute: %w", err)
			}
			fmt.Fprintf(a.Out, "Contributed %d lamports to %s\nSignature: %s\n", amount, campaign, sig)
			return nil
		},
	}
	cmd.Flags().String("campaign", "", "campaign address")
	cmd.Flags().Uint64("amount", 0, "amount in lamports")
	_ = cmd.MarkFlagRequired("campaign")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
