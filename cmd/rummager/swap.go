package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSwapCmd() *cobra.Command {
	var barrelDir string
	cmd := &cobra.Command{
		Use:   "swap --barrels <staging-dir>",
		Short: "Write the signal file that triggers a hot-swap to a staged generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if barrelDir == "" {
				return fmt.Errorf("swap: --barrels is required")
			}
			p := paths()
			if err := writeSignalFile(p.SignalFile, barrelDir); err != nil {
				return err
			}
			fmt.Printf("Signal written: %s -> %s\n", p.SignalFile, barrelDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&barrelDir, "barrels", "", "staging barrel directory the live server should adopt")
	return cmd
}
