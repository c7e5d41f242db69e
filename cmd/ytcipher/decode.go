package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <signature>...",
		Short: "Decode scrambled signatures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := a.requireScript(cmd)
			if err != nil {
				return err
			}
			for _, token := range args {
				sig, err := a.resolver.Decode(cmd.Context(), token, script)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sig)
			}
			return nil
		},
	}
}
