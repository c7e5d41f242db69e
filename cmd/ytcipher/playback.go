package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/ytget/ytcipher"
)

func newPlaybackCmd(a *app) *cobra.Command {
	var (
		signatureCipher string
		rawURL          string
		sig             string
		sp              string
	)

	cmd := &cobra.Command{
		Use:   "playback",
		Short: "Resolve a playback URL",
		Long: `Resolve a fetchable playback URL from either a signatureCipher value
(--cipher) or a base URL with its scrambled signature (--url, --sig, --sp).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := a.requireScript(cmd)
			if err != nil {
				return err
			}

			var u *url.URL
			switch {
			case signatureCipher != "":
				u, err = a.resolver.ResolveSignatureCipher(cmd.Context(), signatureCipher, script)
			case rawURL != "":
				f := ytcipher.Format{URL: rawURL, Signature: sig, SignatureParam: sp}
				u, err = a.resolver.ResolvePlaybackURL(cmd.Context(), f, script)
			default:
				return fmt.Errorf("playback: one of --cipher or --url is required")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&signatureCipher, "cipher", "", "signatureCipher value (url, s and sp query fields)")
	cmd.Flags().StringVar(&rawURL, "url", "", "Base playback URL")
	cmd.Flags().StringVar(&sig, "sig", "", "Scrambled signature")
	cmd.Flags().StringVar(&sp, "sp", "", "Signature query parameter name (default \"signature\")")
	cmd.MarkFlagsMutuallyExclusive("cipher", "url")
	return cmd
}
