package modlink

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/modlink/pkg/config"
	"github.com/arthur-debert/modlink/pkg/game"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/arthur-debert/modlink/pkg/ui"
	"github.com/arthur-debert/modlink/pkg/ui/prompt"
	"github.com/arthur-debert/modlink/pkg/ui/styles"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// session holds what commands share: state locations, the merged
// configuration and the renderer for the chosen output format.
type session struct {
	paths    paths.Paths
	cfg      *config.Config
	format   ui.Format
	renderer ui.Renderer
	out      io.Writer
	errOut   io.Writer
	logger   zerolog.Logger
	gameName string
}

// newSession resolves paths, loads the configuration and builds the
// renderer. An auto format falls back to plain text off a terminal.
func newSession(cmd *cobra.Command) (*session, error) {
	p, err := paths.New()
	if err != nil {
		return nil, err
	}
	pairs, _ := cmd.Flags().GetStringArray("set")
	overrides, err := config.ParseOverrides(pairs)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithOverrides(p.ConfigFilePath(), overrides)
	if err != nil {
		return nil, err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	format = ui.Resolve(format, out)
	renderer, err := ui.NewRenderer(format, out)
	if err != nil {
		return nil, err
	}

	gameName, _ := cmd.Flags().GetString("game")
	return &session{
		paths:    p,
		cfg:      cfg,
		format:   format,
		renderer: renderer,
		out:      out,
		errOut:   cmd.ErrOrStderr(),
		logger:   logging.GetLogger("cli").With().Str("command", cmd.Name()).Logger(),
		gameName: gameName,
	}, nil
}

// openGame opens the game chosen with --game, or the default one
func (s *session) openGame() (*game.Instance, error) {
	g, err := game.Open(s.cfg, s.paths, s.gameName)
	if err != nil {
		return nil, err
	}
	if stale := g.Stale(); len(stale) > 0 {
		for _, e := range stale {
			s.logger.Warn().Err(e).Msg("dropped manifest entry")
		}
		fmt.Fprintln(s.errOut, styles.Render("Warning", fmt.Sprintf(MsgStaleEntries, len(stale))))
	}
	return g, nil
}

// interactive reports whether the user can be prompted and shown
// progress bars: a human format, with stdin and stderr on a terminal.
func (s *session) interactive() bool {
	if s.format.Structured() {
		return false
	}
	f, ok := s.errOut.(*os.File)
	if !ok {
		return false
	}
	return terminal(f) && terminal(os.Stdin)
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// prompter returns the console prompter, or nil when prompting is off
func (s *session) prompter() prompt.Prompter {
	if !s.interactive() {
		return nil
	}
	return prompt.NewConsole(s.errOut)
}

// progressWriter is where extraction bars go, or nil for none
func (s *session) progressWriter() io.Writer {
	if !s.interactive() {
		return nil
	}
	return s.errOut
}

// runE adapts a session-aware function to cobra. Structured formats also
// get the error as a document on stdout.
func runE(fn func(s *session, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		err = fn(s, cmd, args)
		if err != nil && s.format.Structured() {
			_ = s.renderer.RenderError(err)
		}
		return err
	}
}
