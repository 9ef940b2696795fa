package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) withdrawCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Sweep an expired campaign owned by the signer and close its account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			campaign, err := campaignFlag(cmd)
			if err != nil {
				return err
			}

			s, err := a.newSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := s.client.GetCampaign(s.ctx, campaign)
			if err != nil {
				return fmt.Errorf("failed to get campaign: %w", err)
			}
			sig, _, err := s.client.Withdraw(s.ctx, campaign)
			if err != nil {
				return fmt.Errorf("failed to withdraw: %w", err)
			}
			fmt.Fprintf(a.Out, "Withdrew %d lamports from %s\nSignature: %s\n", info.Lamports, campaign, sig)
			return nil
		},
	}
	cmd.Flags().String("campaign", "", "campaign address")
	_ = cmd.MarkFlagRequired("campaign")
	return cmd
}
