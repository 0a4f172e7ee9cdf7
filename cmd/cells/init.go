package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/cells/internal/config"
	cellerr "github.com/vango-dev/cells/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		useTOML bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return cellerr.New("E081").
					WithPath(dir).
					WithSuggestion("Pass --force to overwrite it")
			}

			name := config.JSONFileName
			if useTOML {
				name = config.TOMLFileName
			}
			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useTOML, "toml", false, "Write cells.toml instead of cells.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return cmd
}
