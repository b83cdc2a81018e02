// Package archive turns downloaded mod archives into raw mod trees.
//
// Supported formats are zip, plain tar and tar compressed with gzip, xz or
// zstd. 7z and rar downloads are listed but refused at extraction with
// UNSUPPORTED_ARCHIVE. Extraction writes to a hidden sibling directory
// first and renames it into place, so a failed extraction leaves nothing
// behind in the mods directory.
//
// The package also lists the downloads directory and computes blake3
// digests so duplicate downloads can be flagged.
package archive
