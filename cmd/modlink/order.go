package modlink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filter"
	"github.com/arthur-debert/modlink/pkg/game"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/ui/display"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [keywords...]",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "order",
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}
			downloads, err := g.Downloads()
			if err != nil {
				return err
			}

			q := filter.New(args...)
			res := filter.Apply(q, g.Order(), downloads)
			s.logger.Info().
				Strs("keywords", q.Keywords).
				Int("mods", len(res.Mods)).
				Int("plugins", len(res.Plugins)).
				Int("downloads", len(res.Downloads)).
				Msg("Listing")
			return s.renderer.RenderResult(display.NewListResult(g.Name(), g.Pending(), g.Order(), downloads, q, res))
		}),
	}
}

func newActivateCmd() *cobra.Command {
	return newSetActiveCmd("activate", MsgActivateShort, MsgActivated, true)
}

func newDeactivateCmd() *cobra.Command {
	return newSetActiveCmd("deactivate", MsgDeactivateShort, MsgDeactivated, false)
}

func newSetActiveCmd(name, short, done string, active bool) *cobra.Command {
	var keywords []string

	cmd := &cobra.Command{
		Use:               name + " <mod|plugin> <index|all>...",
		Short:             short,
		Long:              MsgActivateLong,
		Example:           MsgActivateExample,
		GroupID:           "order",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: componentCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			c, err := loadorder.ParseComponent(args[0])
			if err != nil {
				return err
			}
			g, err := s.openGame()
			if err != nil {
				return err
			}
			indices, err := collectIndices(g, c, args[1:], filter.New(keywords...))
			if err != nil {
				return err
			}

			if active {
				err = g.Activate(c, indices)
			} else {
				err = g.Deactivate(c, indices)
			}
			if err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(done, len(indices), c))
		}),
	}
	cmd.Flags().StringSliceVar(&keywords, "filter", nil, MsgFlagFilter)
	return cmd
}

// collectIndices expands every index argument, keeping the first
// occurrence of each index
func collectIndices(g *game.Instance, c loadorder.Component, args []string, q filter.Query) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	for _, arg := range args {
		indices, err := g.Indices(c, arg, q)
		if err != nil {
			return nil, err
		}
		for _, i := range indices {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	return out, nil
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "move <mod|plugin> <from> <to>",
		Aliases:           []string{"mv"},
		Short:             MsgMoveShort,
		Long:              MsgMoveLong,
		GroupID:           "order",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: componentCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			c, err := loadorder.ParseComponent(args[0])
			if err != nil {
				return err
			}
			from, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[2])
			if err != nil {
				return err
			}

			g, err := s.openGame()
			if err != nil {
				return err
			}
			name := entryName(g, c, from)
			if err := g.Move(c, from, to); err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(MsgMoved, name, from, to))
		}),
	}
}

func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Newf(errors.ErrInvalidInput, "expected an index, got %q", arg).WithDetail("arg", arg)
	}
	return i, nil
}

// entryName names the entry at index for messages, falling back to the index
func entryName(g *game.Instance, c loadorder.Component, index int) string {
	o := g.Order()
	if c == loadorder.Mods && index >= 0 && index < len(o.Mods()) {
		return o.Mods()[index].Name
	}
	if c == loadorder.Plugins && index >= 0 && index < len(o.Plugins()) {
		return o.Plugins()[index].Name
	}
	return strconv.Itoa(index)
}

func newTagCmd() *cobra.Command {
	return newTagsCmd("tag", MsgTagShort, true)
}

func newUntagCmd() *cobra.Command {
	return newTagsCmd("untag", MsgUntagShort, false)
}

func newTagsCmd(name, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:               name + " <mod> <tags...>",
		Short:             short,
		Long:              MsgTagLong,
		GroupID:           "order",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: modNamesCompletion,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}
			if add {
				err = g.Tag(args[0], args[1:]...)
			} else {
				err = g.Untag(args[0], args[1:]...)
			}
			if err != nil {
				return err
			}
			m, err := g.Mod(args[0])
			if err != nil {
				return err
			}
			return s.renderer.RenderMessage(fmt.Sprintf(MsgTagged, m.Name, strings.Join(m.Tags, ", ")))
		}),
	}
}

func newDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "discard",
		Short:   MsgDiscardShort,
		Long:    MsgDiscardLong,
		GroupID: "order",
		Args:    cobra.NoArgs,
		RunE: runE(func(s *session, cmd *cobra.Command, args []string) error {
			g, err := s.openGame()
			if err != nil {
				return err
			}
			if !g.Pending() {
				return s.renderer.RenderMessage(MsgNothingPending)
			}
			if err := g.Discard(); err != nil {
				return err
			}
			return s.renderer.RenderMessage(MsgDiscarded)
		}),
	}
}
