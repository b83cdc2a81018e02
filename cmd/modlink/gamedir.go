package modlink

import (
	"fmt"

	"github.com/arthur-debert/modlink/pkg/commit"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/ui/display"
	"github.com/arthur-debert/modlink/pkg/ui/prompt"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "commit",
		Short:   MsgCommitShort,
		Long:    MsgCommitLong,
		GroupID: "game",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}

			var report func(done, total int)
			if s.interactive() {
				bar := prompt.NewProgress(s.errOut, "Linking")
				defer bar.Stop()
				report = bar.Report
			}
			res, err := g.Commit(report)
			if err != nil {
				return err
			}

			if err := s.renderer.RenderResult(display.NewCommitResult(g.Name(), res)); err != nil {
				return err
			}
			return commitFailures(res)
		}),
	}
}

// commitFailures turns a partial commit into an error so the exit status
// reflects it. The failures themselves were already rendered.
func commitFailures(res *commit.Result) error {
	if len(res.Failures) == 0 {
		return nil
	}
	return errors.Wrapf(res.Err(), errors.ErrLinkFailure, MsgErrCommitFailed, len(res.Failures)).
		WithDetail("failures", len(res.Failures))
}

func newCollisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "collisions <mod>",
		Short:             MsgCollisionsShort,
		Long:              MsgCollisionsLong,
		Example:           MsgCollisionsExample,
		GroupID:           "game",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modNamesCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}
			m, err := g.Mod(args[0])
			if err != nil {
				return err
			}
			collisions, err := g.Collisions(m.Name)
			if err != nil {
				return err
			}
			obsolete, err := g.Obsolete()
			if err != nil {
				return err
			}

			doc := &display.CollisionsResult{Mod: m.Name, Collisions: collisions}
			if doc.Collisions == nil {
				doc.Collisions = []commit.Collision{}
			}
			for _, name := range obsolete {
				if name == m.Name {
					doc.Obsolete = true
				}
			}
			return s.renderer.RenderResult(doc)
		}),
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		Long:    MsgCleanLong,
		GroupID: "game",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}
			removed, err := g.Clean()
			if err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(MsgCleaned, removed))
		}),
	}
}
