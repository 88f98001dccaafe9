package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. The preprocessor
// itself is invoked by mdbook, so completions mainly help with install and preview.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mdbook-wavedrom.

To load completions:

Bash:
  $ source <(mdbook-wavedrom completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ mdbook-wavedrom completion bash > /etc/bash_completion.d/mdbook-wavedrom
  # macOS:
  $ mdbook-wavedrom completion bash > $(brew --prefix)/etc/bash_completion.d/mdbook-wavedrom

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ mdbook-wavedrom completion zsh > "${fpath[1]}/_mdbook-wavedrom"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ mdbook-wavedrom completion fish | source

  # To load completions for each session, execute once:
  $ mdbook-wavedrom completion fish > ~/.config/fish/completions/mdbook-wavedrom.fish

PowerShell:
  PS> mdbook-wavedrom completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> mdbook-wavedrom completion powershell > mdbook-wavedrom.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}
