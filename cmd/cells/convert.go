package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/cells/pkg/wire"
)

func convertCmd(flags *globalFlags) *cobra.Command {
	var (
		to     string
		from   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <document>",
		Short: "Convert a document between JSON and MessagePack",
		Long: `Convert a cell document between JSON and MessagePack.

Examples:
  cells convert --to msgpack -o main.msgpack main.json
  cells convert --to json main.msgpack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			target, err := wire.ParseFormat(to)
			if err != nil {
				return err
			}

			doc, err := readDocument(cmd.Context(), cfg, args[0], from)
			if err != nil {
				return err
			}
			data, err := wire.Marshal(doc, target)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Wrote %s (%s)", output, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "json", "Target format: json or msgpack")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Source format (default: detect)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
