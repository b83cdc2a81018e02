package modlink

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/modlink/pkg/archive"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filter"
	"github.com/arthur-debert/modlink/pkg/game"
	"github.com/arthur-debert/modlink/pkg/installer"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/ui/display"
	"github.com/arthur-debert/modlink/pkg/ui/prompt"
	"github.com/spf13/cobra"
)

// Targets of rename and delete
const (
	targetMod      = "mod"
	targetDownload = "download"
)

func newInstallCmd() *cobra.Command {
	var selections []string

	cmd := &cobra.Command{
		Use:               "install <download>",
		Short:             MsgInstallShort,
		Long:              MsgInstallLong,
		Example:           MsgInstallExample,
		GroupID:           "mods",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: downloadNamesCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			sels, err := prompt.ParseSelections(selections)
			if err != nil {
				return err
			}
			g, err := s.openGame()
			if err != nil {
				return err
			}

			mod, err := g.Install(args[0], s.progressWriter())
			if err != nil {
				return err
			}
			doc := &display.InstallResult{Mod: mod.Name, Files: len(mod.Files), Installer: mod.HasInstaller()}
			if !mod.HasInstaller() {
				return s.renderer.RenderResult(doc)
			}

			drive, err := s.installerDriver(cmd, sels, fmt.Sprintf(MsgConfirmConfigure, mod.Name))
			if err != nil {
				return err
			}
			if drive != nil {
				err := configure(g, mod.Name, drive, doc)
				if errors.IsErrorCode(err, errors.ErrWizardAbandoned) {
					// the mod stays installed and can be configured later
					s.logger.Warn().Err(err).Str("mod", mod.Name).Msg("Installer abandoned")
				} else if err != nil {
					return err
				}
			}
			return s.renderer.RenderResult(doc)
		}),
	}
	cmd.Flags().StringArrayVar(&selections, "select", nil, MsgFlagSelect)
	return cmd
}

func newConfigureCmd() *cobra.Command {
	var selections []string

	cmd := &cobra.Command{
		Use:               "configure <mod>",
		Short:             MsgConfigureShort,
		Long:              MsgConfigureLong,
		Example:           MsgConfigureExample,
		GroupID:           "mods",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modNamesCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			sels, err := prompt.ParseSelections(selections)
			if err != nil {
				return err
			}
			g, err := s.openGame()
			if err != nil {
				return err
			}
			m, err := g.Mod(args[0])
			if err != nil {
				return err
			}

			drive, err := s.installerDriver(cmd, sels, "")
			if err != nil {
				return err
			}
			if drive == nil {
				return errors.New(errors.ErrInvalidInput, MsgErrNeedsSelect)
			}
			doc := &display.InstallResult{Mod: m.Name, Installer: true}
			if err := configure(g, m.Name, drive, doc); err != nil {
				return err
			}
			return s.renderer.RenderResult(&display.CommandResult{
				Message: fmt.Sprintf(MsgConfigured, m.Name),
				Result:  doc,
			})
		}),
	}
	cmd.Flags().StringArrayVar(&selections, "select", nil, MsgFlagSelect)
	return cmd
}

// installerDriver decides how an installer gets answered. Selections given
// with --select answer it without prompting; otherwise the user is
// prompted, after agreeing to ask when it is set. A nil driver means the
// installer cannot or should not run now.
func (s *session) installerDriver(cmd *cobra.Command, sels []prompt.Selection, ask string) (game.Driver, error) {
	if cmd.Flags().Changed("select") {
		return prompt.Scripted(sels), nil
	}
	p := s.prompter()
	if p == nil {
		return nil, nil
	}
	if ask != "" {
		ok, err := p.Confirm(ask, true)
		if err != nil || !ok {
			return nil, err
		}
	}
	return prompt.Wizard(p), nil
}

// configure runs the installer of a mod and records the outcome in doc
func configure(g *game.Instance, name string, drive game.Driver, doc *display.InstallResult) error {
	var chosen []installer.Choice
	dests, err := g.Configure(name, func(w *installer.Wizard) error {
		err := drive(w)
		chosen = w.Choices()
		return err
	})
	if err != nil {
		return err
	}
	doc.Files = len(dests)
	doc.Configured = true
	for _, c := range chosen {
		doc.Choices = append(doc.Choices, c.Group+"="+c.Option)
	}
	return nil
}

func newDownloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "downloads",
		Short:   MsgDownloadsShort,
		Long:    MsgDownloadsLong,
		GroupID: "mods",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			downloads, err := archive.List(s.cfg.Downloads)
			if err != nil {
				return err
			}
			duplicates, err := archive.Duplicates(downloads)
			if err != nil {
				return err
			}
			return s.renderer.RenderResult(display.NewDownloadsResult(s.cfg.Downloads, downloads, duplicates))
		}),
	}
}

// parseTarget reads the first argument of rename and delete
func parseTarget(arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "mod", "mods":
		return targetMod, nil
	case "download", "downloads":
		return targetDownload, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown target %q (expected mod or download)", arg).
		WithDetail("target", arg)
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rename <mod|download> <name> <new-name>",
		Short:   MsgRenameShort,
		Long:    MsgRenameLong,
		Example: MsgRenameExample,
		GroupID: "mods",
		Args:    cobra.ExactArgs(3),
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			g, err := s.openGame()
			if err != nil {
				return err
			}

			name := args[1]
			if target == targetMod {
				m, err := g.Mod(name)
				if err != nil {
					return err
				}
				name = m.Name
				err = g.RenameMod(name, args[2])
				if err != nil {
					return err
				}
			} else if err := g.RenameDownload(name, args[2]); err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(MsgRenamed, name, args[2]))
		}),
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <mod|download> <index|all|name>...",
		Aliases: []string{"rm"},
		Short:   MsgDeleteShort,
		Long:    MsgDeleteLong,
		Example: MsgDeleteExample,
		GroupID: "mods",
		Args:    cobra.MinimumNArgs(2),
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			g, err := s.openGame()
			if err != nil {
				return err
			}

			if target == targetDownload {
				if len(args) != 2 {
					return errors.New(errors.ErrInvalidInput, MsgErrOneDownload)
				}
				d, err := g.Download(args[1])
				if err != nil {
					return err
				}
				if err := s.confirm(yes, d.Name); err != nil {
					return err
				}
				if err := g.DeleteDownload(d.Name); err != nil {
					return err
				}
				return s.renderer.RenderMessage(fmt.Sprintf(MsgDeletedDownload, d.Name))
			}

			indices, err := collectIndices(g, loadorder.Mods, args[1:], filter.New())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(indices))
			for _, i := range indices {
				names = append(names, entryName(g, loadorder.Mods, i))
			}
			if err := s.confirm(yes, strings.Join(names, ", ")); err != nil {
				return err
			}
			if err := g.DeleteMods(indices); err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(MsgDeletedMods, len(indices)))
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	return cmd
}

// confirm asks before deleting what unless --yes was given. Without a
// terminal to ask on, --yes is required.
func (s *session) confirm(yes bool, what string) error {
	if yes {
		return nil
	}
	p := s.prompter()
	if p == nil {
		return errors.New(errors.ErrInvalidInput, MsgErrNeedsConfirm)
	}
	ok, err := p.Confirm(fmt.Sprintf(MsgConfirmDelete, what), false)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrInvalidInput, MsgErrDeleteAborted)
	}
	return nil
}
