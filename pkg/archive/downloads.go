package archive

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"lukechampine.com/blake3"
)

// Download is an archive in the downloads directory
type Download struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Format Format `json:"format" yaml:"format"`
	// Digest is filled by Duplicates for files that share a size with
	// another download
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Supported reports whether the download can be installed
func (d Download) Supported() bool {
	return d.Format.Supported()
}

// List returns the archives directly inside dir, sorted by name. A
// missing dir has no downloads.
func List(dir string) ([]Download, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read downloads").WithDetail("path", dir)
	}

	var out []Download
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, _, ok := Detect(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Download{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: format,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Digest returns the hex blake3-256 digest of a file
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot open download").WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot read download").WithDetail("path", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Duplicates groups downloads with identical content. Only files sharing
// a size are hashed; their Digest is set in place. Each returned group
// lists names in order and has at least two members.
func Duplicates(downloads []Download) ([][]string, error) {
	logger := logging.GetLogger("archive.downloads")

	bySize := map[int64][]int{}
	for i, d := range downloads {
		bySize[d.Size] = append(bySize[d.Size], i)
	}

	byDigest := map[string][]int{}
	var digests []string
	for i := range downloads {
		if len(bySize[downloads[i].Size]) < 2 {
			continue
		}
		sum, err := Digest(downloads[i].Path)
		if err != nil {
			return nil, err
		}
		downloads[i].Digest = sum
		if _, seen := byDigest[sum]; !seen {
			digests = append(digests, sum)
		}
		byDigest[sum] = append(byDigest[sum], i)
	}

	var groups [][]string
	for _, sum := range digests {
		idx := byDigest[sum]
		if len(idx) < 2 {
			continue
		}
		group := make([]string, 0, len(idx))
		for _, i := range idx {
			group = append(group, downloads[i].Name)
		}
		groups = append(groups, group)
		logger.Debug().Strs("downloads", group).Str("digest", sum).Msg("duplicate downloads")
	}
	return groups, nil
}
