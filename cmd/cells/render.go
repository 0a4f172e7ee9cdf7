package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/cells/internal/config"
	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/internal/source"
	"github.com/vango-dev/cells/pkg/cell"
	"github.com/vango-dev/cells/pkg/render"
	"github.com/vango-dev/cells/pkg/wire"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		format string
		pretty bool
		page   bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a document to HTML",
		Long: `Render a cell document to HTML.

Cells that fail to render are replaced by an error placeholder and
reported on stderr. The command still succeeds unless --strict is set.

Examples:
  cells render ui/main.json
  cells render --pretty --page -o out.html ui/main.json
  cells render s3://my-bucket/ui/main.msgpack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Render.Pretty = pretty
			}

			doc, err := readDocument(cmd.Context(), cfg, args[0], format)
			if err != nil {
				return err
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			tree := cell.NewTree(
				cell.WithLogger(logger),
				cell.WithMaxDepth(cfg.Render.MaxDepth),
				cell.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
			)
			node, renderErr := tree.Render(cmd.Context(), doc.Root)

			rc := render.RendererConfig{Pretty: cfg.Render.Pretty, Indent: cfg.Render.Indent}
			write := func(out io.Writer) error {
				if page {
					title := doc.Title
					if title == "" {
						title = cfg.Preview.Title
					}
					return render.NewRenderer(rc).RenderPage(out, render.PageData{Body: node, Title: title})
				}
				return render.NewRenderer(rc).RenderToWriter(out, node)
			}
			if output != "" {
				err = createOutput(output, write)
			} else {
				err = write(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			if renderErr != nil {
				cellerr.Print(cmd.ErrOrStderr(), renderErr)
				if strict {
					return cellerr.New("E080")
				}
				warn(cmd.ErrOrStderr(), "Rendered with failing cells")
			}
			if output != "" {
				success(cmd.ErrOrStderr(), "Wrote %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write HTML to a file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format: json or msgpack (default: detect)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the HTML output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the output in a complete HTML page")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any cell fails to render")

	return cmd
}

// createOutput creates path and hands it to write. The close error is
// returned too, since a full disk may only surface there.
func createOutput(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// readDocument fetches and decodes the document at location. An empty
// format is detected from the name and contents.
func readDocument(ctx context.Context, cfg *config.Config, location, format string) (*wire.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := source.NewReader(cfg.Source.Region).Read(ctx, location)
	if err != nil {
		return nil, err
	}

	var f wire.Format
	if format != "" {
		f, err = wire.ParseFormat(format)
	} else {
		f, err = wire.DetectFormat(source.Name(location), data)
	}
	if err != nil {
		return nil, err
	}
	return wire.Decode(data, f, nil)
}
