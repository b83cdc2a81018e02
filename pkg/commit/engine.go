package commit

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/linkstore"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/rs/zerolog"
)

// Options configures an Engine for one game
type Options struct {
	// GameDir is the destination root
	GameDir string
	// ModsDir is the root every managed link points into
	ModsDir string
	// PluginFile receives the enabled plugin order; empty skips it
	PluginFile string
	// EnabledMarker prefixes every line of the plugin file
	EnabledMarker string
	// Progress, if set, is called after every applied entry
	Progress func(done, total int)
}

// Failure is one destination that could not be linked or removed
type Failure struct {
	Dest   string `json:"dest" yaml:"dest"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Err    error  `json:"-" yaml:"-"`
	Reason string `json:"reason" yaml:"reason"`
}

// Result reports what a commit did
type Result struct {
	// Applied lists linked destinations, relative to the game dir, sorted
	Applied []string `json:"applied" yaml:"applied"`
	// Removed counts links torn down before applying
	Removed int `json:"removed" yaml:"removed"`
	// Conflicts maps destinations to every mod offering them, in order
	Conflicts map[string][]Candidate `json:"conflicts" yaml:"conflicts"`
	// Failures collects teardown, link and plugin file failures
	Failures []Failure `json:"failures" yaml:"failures"`
	// PluginOrder is what was written to the plugin file
	PluginOrder []string `json:"pluginOrder" yaml:"pluginOrder"`
}

// Err returns every failure as one error, or nil
func (r *Result) Err() error {
	var errs errors.Multi
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errs.Err()
}

// Engine commits load orders of one game
type Engine struct {
	store  *linkstore.Store
	opts   Options
	logger zerolog.Logger
}

// New creates an Engine linking through store
func New(store *linkstore.Store, opts Options) *Engine {
	return &Engine{
		store:  store,
		opts:   opts,
		logger: logging.GetLogger("commit"),
	}
}

// Commit tears down managed links, stages the active mods of order, links
// the winners and writes the plugin file. The returned error covers
// failures that stop the commit before any link is made; per-entry
// failures are in Result.Failures.
func (e *Engine) Commit(order *loadorder.Order, src FileSource) (*Result, error) {
	done := logging.LogOperationStart(e.logger, "commit")
	defer done()

	staging, err := Stage(order, src)
	if err != nil {
		return nil, err
	}

	result := &Result{Conflicts: staging.Conflicts()}

	removed, failures, err := e.Teardown()
	if err != nil {
		return nil, err
	}
	result.Removed = removed
	result.Failures = append(result.Failures, failures...)

	e.apply(staging, result)
	e.writePlugins(order, result)

	e.logger.Info().
		Int("applied", len(result.Applied)).
		Int("removed", result.Removed).
		Int("conflicts", len(result.Conflicts)).
		Int("failures", len(result.Failures)).
		Msg("commit finished")
	return result, nil
}

// Teardown removes every managed link below the game dir and prunes the
// directories that leaves empty.
func (e *Engine) Teardown() (int, []Failure, error) {
	links, err := e.store.Managed(e.opts.GameDir, e.opts.ModsDir)
	if err != nil {
		return 0, nil, err
	}

	var failures []Failure
	var removed []string
	for _, link := range links {
		if err := e.store.Remove(link); err != nil {
			e.logger.Warn().Err(err).Str("dest", link).Msg("failed to remove managed link")
			failures = append(failures, newFailure(e.rel(link), "", err))
			continue
		}
		removed = append(removed, link)
	}

	pruned := e.store.PruneParents(e.opts.GameDir, removed)
	e.logger.Debug().
		Int("removed", len(removed)).
		Int("pruned", pruned).
		Msg("teardown complete")
	return len(removed), failures, nil
}

func (e *Engine) apply(staging *Staging, result *Result) {
	entries := staging.Entries()
	resolver := newCaseResolver(e.opts.GameDir)

	var failed []string
	for i, entry := range entries {
		dest := resolver.resolve(entry.Dest)
		abs := filepath.Join(e.opts.GameDir, dest)
		if err := e.store.Create(abs, entry.Source); err != nil {
			e.logger.Debug().Err(err).Str("dest", dest).Msg("link failed")
			result.Failures = append(result.Failures, newFailure(dest, entry.Source, err))
			failed = append(failed, abs)
		} else {
			result.Applied = append(result.Applied, dest)
		}
		if e.opts.Progress != nil {
			e.opts.Progress(i+1, len(entries))
		}
	}

	// a link can fail after its parents were made
	if len(failed) > 0 {
		pruned := e.store.PruneParents(e.opts.GameDir, failed)
		e.logger.Debug().Int("failed", len(failed)).Int("pruned", pruned).Msg("pruned after failed links")
	}
}

func (e *Engine) writePlugins(order *loadorder.Order, result *Result) {
	for _, p := range order.EnabledPlugins() {
		result.PluginOrder = append(result.PluginOrder, p.Name)
	}
	if e.opts.PluginFile == "" {
		return
	}

	var b strings.Builder
	for _, name := range result.PluginOrder {
		b.WriteString(e.opts.EnabledMarker)
		b.WriteString(name)
		b.WriteString("\n")
	}

	err := os.MkdirAll(filepath.Dir(e.opts.PluginFile), 0755)
	if err == nil {
		err = os.WriteFile(e.opts.PluginFile, []byte(b.String()), 0644)
	}
	if err != nil {
		werr := errors.Wrap(err, errors.ErrFileWrite, "cannot write plugin file").
			WithDetail("path", e.opts.PluginFile)
		e.logger.Warn().Err(err).Str("path", e.opts.PluginFile).Msg("plugin file not written")
		result.Failures = append(result.Failures, newFailure(e.opts.PluginFile, "", werr))
		return
	}
	e.logger.Debug().Int("plugins", len(result.PluginOrder)).Str("path", e.opts.PluginFile).Msg("plugin file written")
}

func (e *Engine) rel(path string) string {
	if rel, err := filepath.Rel(e.opts.GameDir, path); err == nil {
		return rel
	}
	return path
}

func newFailure(dest, source string, err error) Failure {
	return Failure{Dest: dest, Source: source, Err: err, Reason: err.Error()}
}

// caseResolver respells destination directories to match what already
// exists in the game dir, so a mod's data/ lands in the game's Data/.
type caseResolver struct {
	root    string
	listing map[string]map[string]string
}

func newCaseResolver(root string) *caseResolver {
	return &caseResolver{root: root, listing: map[string]map[string]string{}}
}

func (c *caseResolver) resolve(dest string) string {
	parts := strings.Split(dest, string(filepath.Separator))
	dir := ""
	for i := 0; i < len(parts)-1; i++ {
		if existing, ok := c.names(dir)[strings.ToLower(parts[i])]; ok {
			parts[i] = existing
		}
		dir = filepath.Join(dir, parts[i])
	}
	return filepath.Join(parts...)
}

func (c *caseResolver) names(dir string) map[string]string {
	if names, ok := c.listing[dir]; ok {
		return names
	}
	names := map[string]string{}
	entries, err := os.ReadDir(filepath.Join(c.root, dir))
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				key := strings.ToLower(entry.Name())
				if _, dup := names[key]; !dup {
					names[key] = entry.Name()
				}
			}
		}
	}
	c.listing[dir] = names
	return names
}
