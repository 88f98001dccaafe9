package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-wavedrom/internal/assets"
	"github.com/matzehuels/mdbook-wavedrom/pkg/bookconfig"
	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
	"github.com/matzehuels/mdbook-wavedrom/pkg/install"
	"github.com/matzehuels/mdbook-wavedrom/pkg/wavedrom"
)

// usageExample is printed after a successful install.
const usageExample = "```wavedrom\n{ signal: [\n  { name: \"clk\", wave: \"p.....|...\" },\n  { name: \"dat\", wave: \"x.345x|=.x\", data: [\"head\", \"body\", \"tail\", \"data\"] }\n]}\n```\n"

// installOptions holds the flags of the install command.
type installOptions struct {
	dir   string
	force bool
}

func (c *CLI) installCommand() *cobra.Command {
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "install [dir]",
		Short: "Register the preprocessor in book.toml and copy the WaveDrom scripts",
		Long: `Install configures the book in dir (default: the current directory).

It adds [preprocessor.wavedrom] and the WaveDrom scripts under
output.html.additional-js to book.toml, then copies the scripts next to it.
Running it again changes nothing. Existing script files are kept unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) == 1 {
				opts.dir = args[0]
			}
			return c.runInstall(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite script files that already exist")
	return cmd
}

func (c *CLI) runInstall(ctx context.Context, opts installOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	manifest := assets.Manifest()
	if missing := assets.Missing(); len(missing) > 0 {
		printWarning(c.Out, "this build carries stand-ins for %s; diagrams will not render", strings.Join(missing, ", "))
	}

	cfgPath := filepath.Join(opts.dir, bookconfig.FileName)
	if err := c.configure(cfgPath, manifest); err != nil {
		return err
	}

	report, err := install.Install(opts.dir, manifest, install.Options{Overwrite: opts.force})
	for _, r := range report.Results {
		switch r.Action {
		case install.ActionCopied:
			printSuccess(c.Out, "Copied %s", r.Dest)
		case install.ActionOverwritten:
			printSuccess(c.Out, "Overwrote %s", r.Dest)
		case install.ActionSkipped:
			printInfo(c.Out, "Kept existing %s", r.Dest)
		case install.ActionFailed:
			printError(c.Out, "%s: %s", r.Dest, errors.UserMessage(r.Err))
		}
		if r.Path != "" && r.Action != install.ActionFailed {
			logger.Debug("asset", "file", r.Path, "action", r.Action)
		}
	}
	if err != nil {
		failed := report.Failed()
		return errors.Wrap(errors.ErrCodeAssetCopy, err, "%d of %d scripts could not be installed", len(failed), len(report.Results))
	}
	if len(report.Skipped()) > 0 && !opts.force {
		printDetail(c.Out, "use --force to replace existing scripts")
	}
	prog.done("Installed " + appName)

	printNewline(c.Out)
	printNextStep(c.Out, "Add a diagram to any chapter", "mdbook build")
	printNewline(c.Out)
	printCode(c.Out, usageExample)
	return nil
}

// configure merges the wavedrom requirements into the book.toml at path,
// saving it only when something was missing.
func (c *CLI) configure(path string, manifest install.Manifest) error {
	doc, err := bookconfig.Load(path)
	if err != nil {
		return err
	}

	merged, report, err := bookconfig.Merge(doc, bookconfig.Requirements{
		Preprocessor: wavedrom.Name,
		Command:      appName,
		AdditionalJS: manifest.Destinations(),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "update %s", path)
	}
	if !report.Changed() {
		printInfo(c.Out, "%s is already configured", path)
		return nil
	}

	if err := merged.Save(path); err != nil {
		return err
	}
	printSuccess(c.Out, "Updated %s", path)
	if report.AddedPreprocessor {
		printFile(c.Out, "[preprocessor."+wavedrom.Name+"]")
	}
	if len(report.AddedFiles) > 0 {
		printFile(c.Out, "output.html.additional-js += "+strings.Join(report.AddedFiles, ", "))
	}
	if report.Reformatted {
		printWarning(c.Out, "%s was rewritten from its parsed form; comments and layout were not kept", path)
	}
	return nil
}
