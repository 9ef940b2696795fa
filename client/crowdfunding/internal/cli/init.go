package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) initCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the global campaign registry. Runs once per program deployment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			sig, _, err := s.client.InitializeState(s.ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize global state: %w", err)
			}
			s.log.Debug("Initialized global state", "signature", sig)
			fmt.Fprintf(a.Out, "Initialized global state\nSignature: %s\n", sig)
			return nil
		},
	}
}
