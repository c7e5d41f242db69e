package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ytget/ytcipher/youtube/cipher"
)

func newOpsCmd(a *app) *cobra.Command {
	var (
		file    string
		asJSON  bool
		members bool
	)

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Print the operations recovered from a player script",
		Long: `Print the cipher recovered from the player script named by --script, or
from a local copy given with --file. A local script is checked with the
engine selected by --verify.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				c *cipher.Cipher
				x *cipher.Extraction
			)
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading script: %w", err)
				}
				x, err = cipher.Extract(string(data))
				if err != nil {
					return err
				}
				if a.verifier != nil {
					if err := a.verifier.Verify(x); err != nil {
						return err
					}
				}
				c = x.Cipher
			} else {
				script, err := a.requireScript(cmd)
				if err != nil {
					return err
				}
				c, err = a.resolver.Cipher(cmd.Context(), script)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}
			fmt.Fprintln(out, c.String())
			if members && x != nil {
				fmt.Fprintf(out, "object %s\n", x.ObjectName)
				names := make([]string, 0, len(x.Members))
				for name := range x.Members {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s: %s\n", name, x.Members[name])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the player script from a local file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print operations as JSON")
	cmd.Flags().BoolVar(&members, "members", false, "With --file, also list the helper object members")
	return cmd
}
