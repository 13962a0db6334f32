package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pontos-detect/pontos/artifact"
)

const verifyHelp = `
Check the local model against its configured SHA-256 digest without
touching the network. Exits non-zero when the file is missing or does
not match.
`

func newVerifyCmd(root *rootOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "verify the local model checksum",
		Long:  verifyHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}

			res := artifact.NewVerifier(logger).Verify(cmd.Context(), cfg.ModelPath, cfg.ModelSHA256)

			switch res.Status {
			case artifact.Verified:
				fmt.Fprintf(out, "%s: %s (sha256 %s)\n", res.Path, res.Status, res.Actual)
			case artifact.Skipped:
				fmt.Fprintf(out, "%s: %s (%s)\n", res.Path, res.Status, res.Reason)
			default:
				return res.Err()
			}

			return nil
		},
	}
}
