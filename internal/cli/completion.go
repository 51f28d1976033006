package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/persim"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell.

Completions cover subcommands, flags, the values of --kernel, --weighting and
--format, and the IDs of saved results.

  $ source <(moltda completion bash)
  $ moltda completion zsh > "${fpath[1]}/_moltda"
  $ moltda completion fish > ~/.config/fish/completions/moltda.fish
  PS> moltda completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// registerCompletions attaches value completions to the rasterization flags.
func registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("kernel", completeValues(persim.KernelGaussian.String()))
	_ = cmd.RegisterFlagCompletionFunc("weighting", completeValues(
		persim.WeightingIdentity.String(),
		persim.WeightingLinear.String(),
	))
	_ = cmd.RegisterFlagCompletionFunc("format", completeList(pipeline.FormatJSON, pipeline.FormatCSV, pipeline.FormatPNG))
}

func completeValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeList completes one element of a comma-separated list, keeping the
// elements already typed and skipping the ones they name.
func completeList(values ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		typed := strings.Split(strings.TrimSuffix(prefix, ","), ",")

		var out []string
		for _, v := range values {
			if !slices.Contains(typed, v) {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

// completeResultIDs completes the first argument with saved result IDs,
// described by their names.
func (c *CLI) completeResultIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	st, err := c.newStore(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer st.Close()

	list, err := st.List(cmd.Context(), 0)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID + "\t" + s.Name
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
