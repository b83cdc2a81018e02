package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"
)

// Options tune an extraction
type Options struct {
	// Progress receives a byte progress bar; nil extracts silently
	Progress io.Writer
	// DataDir is the game's data directory name; a lone top-level
	// directory with this name is never elevated
	DataDir string
}

// Extract unpacks archive into dest, which must not exist yet, and returns
// the extracted files relative to dest, slash-separated. A single wrapper
// directory is elevated (see Elevate).
func Extract(archive, dest string, opts Options) ([]string, error) {
	logger := logging.GetLogger("archive").With().Str("archive", filepath.Base(archive)).Logger()

	format, err := checkSupported(archive)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(dest); err == nil {
		return nil, errors.Newf(errors.ErrNameConflict, "%s already exists", dest).WithDetail("path", dest)
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot create mods directory").WithDetail("path", parent)
	}
	tmp, err := os.MkdirTemp(parent, ".extract-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot create extraction directory").WithDetail("path", parent)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	x := &extractor{dest: tmp, progress: opts.Progress, logger: logger}
	start := time.Now()
	switch format {
	case FormatZip:
		err = x.zip(archive)
	default:
		err = x.tarball(archive, format)
	}
	if err != nil {
		return nil, err
	}

	if _, err := Elevate(tmp, opts.DataDir); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot move extracted mod into place").WithDetail("path", dest)
	}

	files, err := listTree(dest)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("dest", dest).
		Int("files", len(files)).
		Dur("took", time.Since(start)).
		Msg("archive extracted")
	return files, nil
}

type extractor struct {
	dest     string
	progress io.Writer
	logger   zerolog.Logger
}

// bar returns a writer counting extracted bytes, or io.Discard
func (x *extractor) bar(total int64, desc string) (io.Writer, func()) {
	if x.progress == nil {
		return io.Discard, func() {}
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(x.progress),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		// drawn up front, or a fast extraction would never show the bar
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	return bar, func() { _ = bar.Finish() }
}

func (x *extractor) zip(archive string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read zip archive").WithDetail("archive", archive)
	}
	defer func() { _ = r.Close() }()

	var total int64
	for _, f := range r.File {
		total += int64(f.UncompressedSize64)
	}
	counter, finish := x.bar(total, filepath.Base(archive))
	defer finish()

	for _, f := range r.File {
		target, err := x.target(f.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "cannot create directory").WithDetail("path", target)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			x.logger.Debug().Str("entry", f.Name).Msg("skipping non-regular zip entry")
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read zip entry").WithDetail("entry", f.Name)
		}
		err = writeFile(target, io.TeeReader(rc, counter), f.Mode().Perm())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (x *extractor) tarball(archive string, format Format) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot open archive").WithDetail("archive", archive)
	}
	defer func() { _ = f.Close() }()

	var total int64
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}
	counter, finish := x.bar(total, filepath.Base(archive))
	defer finish()

	// progress follows the compressed stream
	var r io.Reader = io.TeeReader(f, counter)
	switch format {
	case FormatTarGz:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read gzip stream").WithDetail("archive", archive)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case FormatTarXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read xz stream").WithDetail("archive", archive)
		}
		r = xzr
	case FormatTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read zstd stream").WithDetail("archive", archive)
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot read tar entry").WithDetail("archive", archive)
		}

		switch hdr.Typeflag {
		case tar.TypeXHeader, tar.TypeXGlobalHeader:
			continue
		case tar.TypeDir, tar.TypeReg:
		default:
			x.logger.Debug().Str("entry", hdr.Name).Msgf("skipping tar entry of type %c", hdr.Typeflag)
			continue
		}

		target, err := x.target(hdr.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "cannot create directory").WithDetail("path", target)
			}
			continue
		}
		if err := writeFile(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
			return err
		}
	}
}

// target maps an entry name below dest, refusing names that escape it.
// Backslash separators from Windows-made archives are accepted.
func (x *extractor) target(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if clean == "." {
		return "", nil
	}
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrUnsupportedArchive, "illegal path in archive: %s", name).
			WithDetail("entry", name)
	}
	return filepath.Join(x.dest, clean), nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if perm&0600 != 0600 {
		perm |= 0600
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot create directory").WithDetail("path", target)
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot create file").WithDetail("path", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return errors.Wrap(err, errors.ErrUnsupportedArchive, "cannot extract file").WithDetail("path", target)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot close file").WithDetail("path", target)
	}
	return nil
}

func listTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot list extracted files").WithDetail("path", root)
	}
	return files, nil
}
