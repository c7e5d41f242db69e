package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newManifestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <url>",
		Short: "Decode the /s/<sig>/ segment of a manifest URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := a.requireScript(cmd)
			if err != nil {
				return err
			}
			out, err := a.resolver.ResolveManifestURL(cmd.Context(), args[0], script)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
