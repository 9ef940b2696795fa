package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) getCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a campaign.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			campaign, err := campaignFlag(cmd)
			if err != nil {
				return err
			}

			s, err := a.newSession(cmd, flags, false)
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := s.client.GetCampaign(s.ctx, campaign)
			if err != nil {
				return fmt.Errorf("failed to get campaign: %w", err)
			}
			actual, err := s.client.ActualContribution(s.ctx, info)
			if err != nil {
				return fmt.Errorf("failed to get actual contribution: %w", err)
			}
			renderCampaign(a.Out, campaignRow{
				info:   *info,
				state:  info.State(a.Clock.Now().Unix()),
				actual: actual,
			})
			return nil
		},
	}
	cmd.Flags().String("campaign", "", "campaign address")
	_ = cmd.MarkFlagRequired("campaign")
	return cmd
}
