package main

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// completionGenerators maps a shell name to its cobra script generator.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a tab-completion script for your shell",
	Long: `Print a tab-completion script for artemis to stdout.

Besides subcommands and flags, the script completes event type names for
--include-types and --exclude-types (comma lists included) and the values
accepted by --format.

Try it in the current shell:
  bash        source <(artemis completion bash)
  zsh         source <(artemis completion zsh)
  fish        artemis completion fish | source
  powershell  artemis completion powershell | Out-String | Invoke-Expression

Keep it across sessions by saving the script where your shell looks for
completions, for example:
  artemis completion bash > ~/.local/share/bash-completion/completions/artemis
  artemis completion zsh  > "${fpath[1]}/_artemis"
  artemis completion fish > ~/.config/fish/completions/artemis.fish

zsh needs compinit loaded; open a new shell after installing.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeEventTypes offers event type names for the last element of a
// comma-separated list. Names already typed in the list or given by an
// earlier use of the flag are not offered again.
func completeEventTypes(flagName string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var typed []string
		last := toComplete
		if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
			typed = strings.Split(toComplete[:i], ",")
			last = toComplete[i+1:]
		}
		if given, err := cmd.Flags().GetStringSlice(flagName); err == nil {
			typed = append(typed, given...)
		}
		for i, v := range typed {
			typed[i] = strings.ToLower(strings.TrimSpace(v))
		}
		head := toComplete[:len(toComplete)-len(last)]
		last = strings.ToLower(strings.TrimSpace(last))

		var out []string
		for _, name := range ValidEventTypeNames() {
			if strings.HasPrefix(name, last) && !slices.Contains(typed, name) {
				out = append(out, head+name)
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFormats offers the --format values of the event commands.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for f := range ValidFormats {
		if strings.HasPrefix(f, toComplete) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out, cobra.ShellCompDirectiveNoFileComp
}

// registerEventCompletions wires completion for the type filter and format
// flags of cmd.
func registerEventCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("include-types", completeEventTypes("include-types"))
	_ = cmd.RegisterFlagCompletionFunc("exclude-types", completeEventTypes("exclude-types"))
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}
