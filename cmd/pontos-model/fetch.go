package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pontos-detect/pontos"
	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/config"
	"github.com/pontos-detect/pontos/progress"
)

const fetchHelp = `
Download the detection model unless a verified copy is already present.

An existing file that fails checksum verification is deleted and
downloaded again. With --force the model is always downloaded.
`

type fetchOptions struct {
	*rootOptions
	force    bool
	url      string
	path     string
	sha256   string
	progress string
}

func newFetchCmd(root *rootOptions, out io.Writer) *cobra.Command {
	o := &fetchOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "download the model if it is missing or corrupt",
		Long:  fetchHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, out)
		},
	}

	addFetchFlags(cmd.Flags(), o)

	return cmd
}

func addFetchFlags(f *pflag.FlagSet, o *fetchOptions) {
	f.BoolVar(&o.force, "force", false, "re-download even if a valid model exists")
	f.StringVar(&o.url, "url", "", "override the model download URL")
	f.StringVar(&o.path, "path", "", "override the local model path")
	f.StringVar(&o.sha256, "sha256", "", "override the expected SHA-256 digest")
	f.StringVar(&o.progress, "progress", "", "progress output: bar, log or none")
}

func (o *fetchOptions) run(cmd *cobra.Command, out io.Writer) error {
	flags := cmd.Flags()

	cfg, logger, err := o.load(func(c *config.Config) {
		if flags.Changed("url") {
			c.ModelURL = o.url
		}
		if flags.Changed("path") {
			c.ModelPath = o.path
		}
		if flags.Changed("sha256") {
			c.ModelSHA256 = o.sha256
		}
		if flags.Changed("progress") {
			c.Progress = o.progress
		}
	})
	if err != nil {
		return err
	}

	reporter, err := progress.ForMode(progress.Mode(cfg.Progress), logger, o.errOut, filepath.Base(cfg.ModelPath))
	if err != nil {
		return err
	}

	f, err := pontos.NewAcquirer(cfg, logger, artifact.WithProgress(reporter))
	if err != nil {
		return err
	}

	path, err := f.Acquire(cmd.Context(), cfg.ModelDescriptor(), o.force)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "model ready: %s\n", path)
	return nil
}
