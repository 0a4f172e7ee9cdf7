package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/cells/internal/config"
	cellerr "github.com/vango-dev/cells/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cellerr.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cells",
		Short: "Render server-driven cell documents",
		Long: `Cells renders cell documents to HTML.

A document is a tree of cells, each with an id, a type, extra data
(events and CSS classes) and either named children or pre-rendered
replacements. Documents are JSON or MessagePack and can be read from
disk or from s3://bucket/key.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				cellerr.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: cells.json or cells.toml in this or a parent directory)")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		renderCmd(flags),
		serveCmd(flags),
		convertCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig reads the config named by --config, or the nearest one.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.LoadFile(flags.configPath)
	}
	return config.LoadOrDefault(".")
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
