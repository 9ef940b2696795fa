package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var errDeadlineInvalid = errors.New("deadline must be a duration, an RFC3339 time or unix seconds")

// parseDeadline accepts a duration relative to now ("72h"), an RFC3339 timestamp or unix seconds.
func parseDeadline(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, errDeadlineInvalid
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("%w: duration %s is not positive", errDeadlineInvalid, value)
		}
		return now.Add(d), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errDeadlineInvalid, value)
}

func (a *App) createCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign owned by the signer.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := cmd.Flags().GetString("title")
			if err != nil {
				return fmt.Errorf("failed to get title flag: %w", err)
			}
			description, err := cmd.Flags().GetString("description")
			if err != nil {
				return fmt.Errorf("failed to get description flag: %w", err)
			}
			deadlineFlag, err := cmd.Flags().GetString("deadline")
			if err != nil {
				return fmt.Errorf("failed to get deadline flag: %w", err)
			}
			deadline, err := parseDeadline(deadlineFlag, a.Clock.Now())
			if err != nil {
				return err
			}

			s, err := a.newSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			address, sig, _, err := s.client.CreateCampaign(s.ctx, title, description, deadline)
			if err != nil {
				return fmt.Errorf("failed to create campaign: %w", err)
			}
			fmt.Fprintf(a.Out, "Created campaign %q\nAddress:   %s\nDeadline:  %s\nSignature: %s\n",
				title, address, deadline.UTC().Format(time.RFC3339), sig)
			return nil
		},
	}
	cmd.Flags().String("title", "", "campaign title, also part of the campaign address (max 32 bytes)")
	cmd.Flags().String("description", "", "campaign description")
	cmd.Flags().String("deadline", "", "deadline as a duration from now (72h), an RFC3339 time or unix seconds")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}
