package game

import (
	"github.com/arthur-debert/modlink/pkg/commit"
	"github.com/arthur-debert/modlink/pkg/manifest"
)

// Commit projects the load order into the game directory and records it
// as the committed manifest. The manifest is written even when some links
// failed, since the game dir then reflects it as far as it could.
func (g *Instance) Commit(progress func(done, total int)) (*commit.Result, error) {
	res, err := g.engine(progress).Commit(g.order, g.lib)
	if err != nil {
		return nil, err
	}

	g.pending = false
	if err := g.save(); err != nil {
		return res, err
	}
	if err := manifest.Remove(g.paths.PendingPath(g.name)); err != nil {
		return res, err
	}
	if len(res.Failures) > 0 {
		g.logger.Warn().Int("failures", len(res.Failures)).Msg("commit finished with failures")
	}
	return res, nil
}

// Collisions lists the destinations a mod shares with other active mods
func (g *Instance) Collisions(mod string) ([]commit.Collision, error) {
	m, err := g.mod(mod)
	if err != nil {
		return nil, err
	}
	return commit.Collisions(g.order, g.lib, m.Name)
}

// Obsolete lists active mods that lose every file they offer
func (g *Instance) Obsolete() ([]string, error) {
	return commit.ObsoleteMods(g.order, g.lib)
}

// Clean removes every managed link from the game directory without
// touching the load order; the next commit restores them.
func (g *Instance) Clean() (int, error) {
	removed, failures, err := g.engine(nil).Teardown()
	if err != nil {
		return 0, err
	}
	res := commit.Result{Failures: failures}
	return removed, res.Err()
}
