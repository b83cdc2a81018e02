package installer

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/spf13/afero"
)

// Resolve orders the installs of a completed run: required installs,
// then conditional installs whose predicate holds, then the installs of
// the chosen options in order. Within each of those layers installs are
// stably sorted by ascending priority, so with last-writer-wins a higher
// priority beats iteration order.
func Resolve(cfg *Config, flags Flags, chosen []*Option) []Install {
	var out []Install

	out = append(out, byPriority(cfg.Required)...)

	var cond []Install
	for _, ci := range cfg.Conditional {
		if Holds(ci.When, flags) {
			cond = append(cond, ci.Installs...)
		}
	}
	out = append(out, byPriority(cond)...)

	var picked []Install
	for _, opt := range chosen {
		picked = append(picked, opt.Installs...)
	}
	out = append(out, byPriority(picked)...)

	return out
}

func byPriority(in []Install) []Install {
	out := append([]Install(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Planned is one file Materialize will write
type Planned struct {
	// Source is relative to the source root, with on-disk spelling
	Source string
	// Dest is relative to the output root
	Dest string
}

// Plan expands installs against the files below srcRoot. Sources match
// without regard to case; folder installs expand to every file beneath.
// Later installs of the same destination replace earlier ones. Files
// below skip (the previous output, usually) are never sources.
func Plan(fsys afero.Fs, srcRoot, skip string, installs []Install) ([]Planned, error) {
	index, err := indexTree(fsys, srcRoot, skip)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(index))
	for lower := range index {
		keys = append(keys, lower)
	}
	sort.Strings(keys)

	plan := map[string]*Planned{}
	var order []string
	put := func(src, dest string) error {
		clean, ok := confined(dest)
		if !ok {
			return errors.Newf(errors.ErrInvalidInput, "installer destination %q is outside the mod", dest).
				WithDetail("destination", dest)
		}
		key := strings.ToLower(clean)
		if existing, ok := plan[key]; ok {
			existing.Source = src
			return nil
		}
		plan[key] = &Planned{Source: src, Dest: clean}
		order = append(order, key)
		return nil
	}

	for _, in := range installs {
		src := strings.ToLower(in.Source)
		if !in.Folder {
			actual, ok := index[src]
			if !ok {
				return nil, errors.Newf(errors.ErrNotFound, "installer file %q not found", in.Source).
					WithDetail("source", in.Source)
			}
			if err := put(actual, in.Destination); err != nil {
				return nil, err
			}
			continue
		}

		prefix := src + "/"
		if src == "" {
			prefix = ""
		}
		matched := false
		for _, lower := range keys {
			if !strings.HasPrefix(lower, prefix) {
				continue
			}
			matched = true
			actual := index[lower]
			if err := put(actual, path.Join(in.Destination, actual[len(prefix):])); err != nil {
				return nil, err
			}
		}
		if !matched {
			return nil, errors.Newf(errors.ErrNotFound, "installer folder %q not found", in.Source).
				WithDetail("source", in.Source)
		}
	}

	out := make([]Planned, 0, len(order))
	for _, key := range order {
		out = append(out, *plan[key])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dest < out[j].Dest })
	return out, nil
}

// confined cleans a destination and reports whether it stays below the
// output root
func confined(dest string) (string, bool) {
	if filepath.IsAbs(dest) || filepath.VolumeName(dest) != "" {
		return "", false
	}
	clean := path.Clean(strings.ReplaceAll(dest, "\\", "/"))
	if clean == "." || clean == ".." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// Materialize replaces outRoot with the files installs select from
// srcRoot and returns their destinations, relative and slash-separated.
// The copies run as one synthfs pipeline; a failed copy rolls back the
// ones before it.
func Materialize(srcRoot, outRoot string, installs []Install) ([]string, error) {
	logger := logging.GetLogger("installer.materialize")

	srcRoot, err := filepath.Abs(srcRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot resolve installer root").WithDetail("path", srcRoot)
	}
	outRoot, err = filepath.Abs(outRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot resolve installer output").WithDetail("path", outRoot)
	}

	plan, err := Plan(afero.NewOsFs(), srcRoot, outRoot, installs)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(outRoot); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot clear installer output").WithDetail("path", outRoot)
	}

	sfs := synthfs.New()
	ops := []synthfs.Operation{sfs.CreateDirWithID("mkdir:.", outRoot, 0755)}
	for _, dir := range outputDirs(plan) {
		ops = append(ops, sfs.CreateDirWithID("mkdir:"+dir, filepath.Join(outRoot, filepath.FromSlash(dir)), 0755))
	}
	dests := make([]string, 0, len(plan))
	for _, p := range plan {
		src := filepath.Join(srcRoot, filepath.FromSlash(p.Source))
		dst := filepath.Join(outRoot, filepath.FromSlash(p.Dest))
		ops = append(ops, sfs.CopyWithID("copy:"+p.Dest, src, dst))
		dests = append(dests, p.Dest)
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true
	fs := synthfs.NewPathAwareFileSystem(filesystem.NewOSFileSystem("/"), "/").WithAbsolutePaths()
	if _, err := synthfs.RunWithOptions(context.Background(), fs, options, ops...); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write installer output").WithDetail("path", outRoot)
	}

	logger.Debug().
		Str("output", outRoot).
		Int("files", len(dests)).
		Int("operations", len(ops)).
		Msg("installer output written")
	return dests, nil
}

// outputDirs lists every directory the plan writes into, parents first
func outputDirs(plan []Planned) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range plan {
		for dir := path.Dir(p.Dest); dir != "." && !seen[dir]; dir = path.Dir(dir) {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		if di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/"); di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})
	return dirs
}

// indexTree maps lower-cased slash paths of every file below root to
// their on-disk spelling.
func indexTree(fsys afero.Fs, root, skip string) (map[string]string, error) {
	index := map[string]string{}
	root = filepath.Clean(root)
	skip = filepath.Clean(skip)

	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p == skip {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		index[strings.ToLower(rel)] = rel
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read installer sources").WithDetail("path", root)
	}
	return index, nil
}
