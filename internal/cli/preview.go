package cli

import (
	"context"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-wavedrom/internal/assets"
	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
	"github.com/matzehuels/mdbook-wavedrom/pkg/preview"
)

func (c *CLI) previewCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Serve a markdown file with its WaveDrom diagrams rendered",
		Long: `Preview serves a single markdown file over HTTP with every wavedrom block
rendered in the browser. The file is read again on each page load, so edit
and refresh without rebuilding the book.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultPreviewAddr, "address to listen on")
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, path, addr string) error {
	logger := loggerFromContext(ctx)

	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "preview %s", path)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "listen on %s", addr)
	}

	if missing := assets.Missing(); len(missing) > 0 {
		logger.Warn("WaveDrom scripts not bundled, diagrams will not render", "missing", missing)
	}

	srv := preview.New(preview.Options{
		Path:    path,
		Assets:  assets.FS(),
		Scripts: assets.Manifest().Destinations(),
		Logger:  logger,
	})

	printSuccess(c.Out, "Previewing %s", path)
	printFile(c.Out, StyleLink.Render("http://"+ln.Addr().String()+"/"))
	printDetail(c.Out, "press Ctrl+C to stop")

	return srv.Serve(ctx, ln)
}
