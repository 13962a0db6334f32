package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pontos-detect/pontos/artifact"
)

func newDigestCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "digest FILE...",
		Short: "print the SHA-256 digest of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, err := artifact.Digest(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}
