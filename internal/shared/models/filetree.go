package models

import (
	"sort"
	"strings"
	"time"
)

// FileEntry is one file in a torrent. Path holds the components relative
// to the torrent root, without the torrent name itself. For a single-file
// torrent Path is empty and the name identifies the file.
type FileEntry struct {
	Path   []string
	Length int64
	MTime  time.Time // zero when mtimes were not recorded
	// PadFile marks a synthetic zero-content entry inserted by the
	// hybrid combiner to round the preceding file up to a piece
	// boundary. Pad files participate in the v1 piece stream but are
	// never hashed for v2 and are hidden from listings by default.
	PadFile bool

	// v2 fields, filled by the merkle hasher or the reader.
	Root  Hash   // 32-byte pieces root, nil until hashed
	Layer []Hash // piece layer, nil when Length <= piece length
}

func (f FileEntry) DisplayPath(name string) string {
	if len(f.Path) == 0 {
		return name
	}
	return name + "/" + strings.Join(f.Path, "/")
}

// FileTree is the ordered set of files a torrent describes. Entries are
// kept sorted lexicographically by path; that order is load-bearing for
// the v1 piece stream.
type FileTree struct {
	Name       string
	SingleFile bool
	Entries    []FileEntry
}

func NewFileTree(name string, single bool, entries []FileEntry) FileTree {
	sort.Slice(entries, func(i, j int) bool {
		return pathLess(entries[i].Path, entries[j].Path)
	})
	return FileTree{Name: name, SingleFile: single, Entries: entries}
}

func pathLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// TotalLength is the length of the logical v1 byte stream, pad files
// included.
func (t FileTree) TotalLength() int64 {
	var total int64
	for _, f := range t.Entries {
		total += f.Length
	}
	return total
}

// NumFiles counts the visible (non-pad) files.
func (t FileTree) NumFiles() int {
	n := 0
	for _, f := range t.Entries {
		if !f.PadFile {
			n++
		}
	}
	return n
}

// LatestMTime returns the newest recorded modification time, or the zero
// time when none was recorded.
func (t FileTree) LatestMTime() time.Time {
	var latest time.Time
	for _, f := range t.Entries {
		if f.MTime.After(latest) {
			latest = f.MTime
		}
	}
	return latest
}

// Offset returns the byte offset of entry i within the v1 stream.
func (t FileTree) Offset(i int) int64 {
	var off int64
	for j := 0; j < i; j++ {
		off += t.Entries[j].Length
	}
	return off
}
