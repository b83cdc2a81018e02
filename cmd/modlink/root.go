// Package modlink is the command line interface of modlink.
package modlink

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/modlink/internal/version"
	"github.com/arthur-debert/modlink/pkg/cobrax/topics"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/arthur-debert/modlink/pkg/ui"
	"github.com/arthur-debert/modlink/pkg/ui/styles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// StylesFileName is the optional style override in the config directory
const StylesFileName = "styles.yaml"

//go:embed topics
var topicsFS embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		gameName  string
		format    string
		overrides []string
	)

	rootCmd := &cobra.Command{
		Use:     "modlink",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			loadUserStyles()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&gameName, "game", "g", "", MsgFlagGame)
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, MsgFlagSet)
	_ = rootCmd.RegisterFlagCompletionFunc("game", gameNamesCompletion)
	_ = rootCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(ui.Formats(), cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddGroup(&cobra.Group{
		ID:    "order",
		Title: "LOAD ORDER:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "game",
		Title: "GAME DIRECTORY:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "mods",
		Title: "MODS AND DOWNLOADS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newActivateCmd())
	rootCmd.AddCommand(newDeactivateCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newUntagCmd())
	rootCmd.AddCommand(newDiscardCmd())

	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newCollisionsCmd())
	rootCmd.AddCommand(newCleanCmd())

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newDownloadsCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDeleteCmd())

	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	helpTopics, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		_, err = topics.Install(rootCmd, helpTopics, topics.Options{Renderer: topics.NewGlamourRenderer()})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// loadUserStyles applies <config dir>/styles.yaml when the user has one
func loadUserStyles() {
	p, err := paths.New()
	if err != nil {
		return
	}
	path := filepath.Join(p.ConfigDir(), StylesFileName)
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := styles.LoadStyles(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Ignoring user styles")
	}
}
