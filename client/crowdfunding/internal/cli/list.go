package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func (a *App) listCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the campaigns in the global registry.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerFlag, err := cmd.Flags().GetString("owner")
			if err != nil {
				return fmt.Errorf("failed to get owner flag: %w", err)
			}
			var owner solana.PublicKey
			if ownerFlag != "" {
				owner, err = solana.PublicKeyFromBase58(ownerFlag)
				if err != nil {
					return fmt.Errorf("invalid owner %q: %w", ownerFlag, err)
				}
			}
			showClosed, err := cmd.Flags().GetBool("closed")
			if err != nil {
				return fmt.Errorf("failed to get closed flag: %w", err)
			}

			s, err := a.newSession(cmd, flags, false)
			if err != nil {
				return err
			}
			defer s.Close()

			campaigns, err := s.client.ListCampaigns(s.ctx)
			if err != nil {
				return fmt.Errorf("failed to list campaigns: %w", err)
			}

			now := a.Clock.Now().Unix()
			rows := make([]campaignRow, 0, len(campaigns))
			for i := range campaigns {
				info := &campaigns[i]
				if info.Closed() && (!showClosed || !owner.IsZero()) {
					continue
				}
				if !owner.IsZero() && !info.Campaign.Owner.Equals(owner) {
					continue
				}
				actual, err := s.client.ActualContribution(s.ctx, info)
				if err != nil {
					return fmt.Errorf("failed to get actual contribution for %s: %w", info.Address, err)
				}
				rows = append(rows, campaignRow{info: *info, state: info.State(now), actual: actual})
			}
			s.log.Debug("Listed campaigns", "registry", len(campaigns), "shown", len(rows))

			if len(rows) == 0 {
				fmt.Fprintln(a.Out, "No campaigns found")
				return nil
			}
			renderCampaigns(a.Out, rows)
			return nil
		},
	}
	cmd.Flags().String("owner", "", "only show campaigns owned by this address")
	cmd.Flags().Bool("closed", false, "include registry entries whose campaign has been withdrawn")
	return cmd
}
