package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-wavedrom/pkg/buildinfo"
	"github.com/matzehuels/mdbook-wavedrom/pkg/preprocess"
	"github.com/matzehuels/mdbook-wavedrom/pkg/wavedrom"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the binary name, also written as the preprocessor command
	// into book.toml.
	appName = "mdbook-wavedrom"

	// defaultPreviewAddr is where preview listens unless --addr is given.
	defaultPreviewAddr = "127.0.0.1:3000"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// Exit Codes
// =============================================================================

// ExitError ends the process with Code and no further message.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// In and Out carry the preprocessor protocol. Out also receives the
	// human-readable output of install and preview.
	In  io.Reader
	Out io.Writer
}

// New creates a CLI reading from in, writing results to out and logging to
// logw.
func New(in io.Reader, out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		In:     in,
		Out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand, it is the preprocessor mdbook invokes.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "An mdbook preprocessor that renders WaveDrom timing diagrams",
		Long: `mdbook-wavedrom turns ` + "```wavedrom" + ` code blocks into WaveDrom diagrams.

Run "mdbook-wavedrom install" in a book directory to register the preprocessor
in book.toml and copy the WaveDrom scripts. mdbook then calls this binary with
the book on stdin and reads the rewritten book from stdout.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreprocessor(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.supportsCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// runPreprocessor handles one preprocessor run over In and Out.
func (c *CLI) runPreprocessor(cmd *cobra.Command) error {
	logger := loggerFromContext(cmd.Context())
	return preprocess.Handle(wavedrom.New(logger), c.In, c.Out, logger)
}

// supportsCommand answers the host's renderer check. The answer is the exit
// code alone: nothing is printed and stdin is never read.
func (c *CLI) supportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "supports <renderer>",
		Short: "Check whether a renderer is supported by this preprocessor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if preprocess.Supports(wavedrom.New(logger), args[0]) {
				return nil
			}
			logger.Debug("renderer not supported", "renderer", args[0])
			return &ExitError{Code: 1}
		},
	}
}
