package archive

import (
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
)

// Format identifies an archive container and compression
type Format string

const (
	FormatZip    Format = "zip"
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarXz  Format = "tar.xz"
	FormatTarZst Format = "tar.zst"
	Format7z     Format = "7z"
	FormatRar    Format = "rar"
)

// suffixes are matched longest first
var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".tar.zst", FormatTarZst},
	{".tgz", FormatTarGz},
	{".txz", FormatTarXz},
	{".tzst", FormatTarZst},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".7z", Format7z},
	{".rar", FormatRar},
}

// Detect returns the format of a file name and the name without its
// archive suffix. Unknown suffixes report ok false.
func Detect(name string) (format Format, stem string, ok bool) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format, name[:len(name)-len(s.suffix)], true
		}
	}
	return "", name, false
}

// Supported reports whether modlink can extract the format
func (f Format) Supported() bool {
	switch f {
	case FormatZip, FormatTar, FormatTarGz, FormatTarXz, FormatTarZst:
		return true
	}
	return false
}

func checkSupported(name string) (Format, error) {
	format, _, ok := Detect(name)
	if !ok {
		return "", errors.Newf(errors.ErrUnsupportedArchive, "%s is not an archive", name).
			WithDetail("archive", name)
	}
	if !format.Supported() {
		return "", errors.Newf(errors.ErrUnsupportedArchive, "%s archives cannot be extracted; repack %s as zip or tar", format, name).
			WithDetail("archive", name).
			WithDetail("format", string(format))
	}
	return format, nil
}
