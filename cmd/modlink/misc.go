package modlink

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/modlink/internal/version"
	"github.com/arthur-debert/modlink/pkg/config"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/ui/display"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "games",
		Short:   MsgGamesShort,
		Long:    MsgGamesLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			return s.renderer.RenderResult(display.NewGamesResult(s.cfg))
		}),
	}
}

func newConfigCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Example: MsgConfigExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := io.WriteString(s.out, config.DefaultsContent())
				return err
			}
			if s.format.Structured() {
				return s.renderer.RenderResult(s.cfg)
			}
			if _, err := fmt.Fprintf(s.out, "# %s\n", s.paths.ConfigFilePath()); err != nil {
				return err
			}
			enc := yaml.NewEncoder(s.out)
			enc.SetIndent(2)
			if err := enc.Encode(s.cfg); err != nil {
				return err
			}
			return enc.Close()
		}),
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "log",
		Short:   MsgLogShort,
		Long:    MsgLogLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), logging.LogFilePath())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "modlink %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion <bash|zsh|fish|powershell>",
		Short:     MsgCompletionShort,
		Long:      MsgCompletionLong,
		Example:   MsgCompletionExample,
		GroupID:   "misc",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// gameNamesCompletion completes --game from the configuration
func gameNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return prefixed(s.cfg.GameNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// modNamesCompletion completes the first argument with mod names
func modNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, err := newSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	g, err := s.openGame()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, m := range g.Order().Mods() {
		names = append(names, m.Name)
	}
	return prefixed(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// downloadNamesCompletion completes the first argument with archive names
func downloadNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, err := newSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	g, err := s.openGame()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	downloads, err := g.Downloads()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, d := range downloads {
		names = append(names, d.Name)
	}
	return prefixed(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// componentCompletion completes the component argument of order commands
func componentCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []string{"mod", "plugin"}, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"all"}, cobra.ShellCompDirectiveNoFileComp
}

func prefixed(names []string, prefix string) []string {
	var out []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			out = append(out, name)
		}
	}
	return out
}
