// Package render formats parsed metainfo as text: the aligned
// box-drawing file tree, the flat listing with attribute columns, and
// the per-field report sections.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Options selects which attribute columns the file listing carries. The
// zero value hides everything; DefaultOptions matches the default
// listing (size and attribute flags on).
type Options struct {
	ShowPad       bool
	Offsets       bool
	Size          bool
	Attributes    bool
	PieceRange    bool
	MTime         bool
	Roots         bool
	HumanReadable bool
}

func DefaultOptions() Options {
	return Options{Size: true, Attributes: true}
}

// Renderer formats file listings for one info dictionary. All
// configuration is explicit; rendering the same info twice gives the
// same lines.
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// node is one slot in the directory arena. file is the entry index, or
// -1 for directories. Children are kept sorted by name.
type node struct {
	name     string
	file     int
	children []int
}

type dirTree struct {
	nodes []node
}

func (t *dirTree) add(parent int, name string, file int) int {
	for _, c := range t.nodes[parent].children {
		if t.nodes[c].name == name {
			return c
		}
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{name: name, file: file})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

func (t *dirTree) sortChildren(id int) {
	kids := t.nodes[id].children
	sort.Slice(kids, func(i, j int) bool {
		return t.nodes[kids[i]].name < t.nodes[kids[j]].name
	})
	for _, c := range kids {
		t.sortChildren(c)
	}
}

// buildDirTree groups the flat entry list into a directory arena rooted
// at node 0. Full display paths are used, so a multi-file torrent's name
// becomes the single top-level directory.
func buildDirTree(info models.Info, showPad bool) dirTree {
	t := dirTree{nodes: []node{{file: -1}}}
	for i, f := range info.Files.Entries {
		if f.PadFile && !showPad {
			continue
		}
		segs := strings.Split(f.DisplayPath(info.Files.Name), "/")
		cur := 0
		for _, seg := range segs[:len(segs)-1] {
			cur = t.add(cur, seg, -1)
		}
		t.add(cur, segs[len(segs)-1], i)
	}
	t.sortChildren(0)
	return t
}

// Tree renders the box-drawing tree. Every row repeats a vertical
// continuation glyph for each still-open ancestor column; a non-last
// directory child opens exactly one new column for its subtree.
func (r *Renderer) Tree(info models.Info) []string {
	t := buildDirTree(info, r.opts.ShowPad)
	var out []string
	var levels []bool
	r.treeImpl(&out, t, info, 0, &levels)
	return out
}

func (r *Renderer) treeImpl(out *[]string, t dirTree, info models.Info, id int, levels *[]bool) {
	kids := t.nodes[id].children
	for i, c := range kids {
		last := i == len(kids)-1
		n := t.nodes[c]

		var b strings.Builder
		if n.file >= 0 {
			b.WriteString(r.attrColumns(info, n.file))
		} else {
			b.WriteString(r.blankColumns(info.Mode.HasV2()))
		}
		for _, open := range *levels {
			if open {
				b.WriteString(" │")
			} else {
				b.WriteString("  ")
			}
		}
		if last {
			b.WriteString(" └ ")
		} else {
			b.WriteString(" ├ ")
		}
		b.WriteString(n.name)
		*out = append(*out, b.String())

		if n.file < 0 {
			*levels = append(*levels, !last)
			r.treeImpl(out, t, info, c, levels)
			*levels = (*levels)[:len(*levels)-1]
		}
	}
}

// Flat renders one line per file in entry order.
func (r *Renderer) Flat(info models.Info) []string {
	var out []string
	for i, f := range info.Files.Entries {
		if f.PadFile && !r.opts.ShowPad {
			continue
		}
		out = append(out, r.attrColumns(info, i)+f.DisplayPath(info.Files.Name))
	}
	return out
}

func (r *Renderer) attrColumns(info models.Info, i int) string {
	f := info.Files.Entries[i]
	var b strings.Builder
	if r.opts.Offsets {
		fmt.Fprintf(&b, "%11d ", info.Files.Offset(i))
	}
	if r.opts.Size {
		if r.opts.HumanReadable {
			fmt.Fprintf(&b, "%11s", humanReadable(f.Length))
		} else {
			fmt.Fprintf(&b, "%11d", f.Length)
		}
	}
	if r.opts.Attributes {
		pad := '-'
		if f.PadFile {
			pad = 'p'
		}
		fmt.Fprintf(&b, " %c--- ", pad)
	}
	if r.opts.PieceRange {
		off := info.Files.Offset(i)
		end := off
		if f.Length > 0 {
			end = off + f.Length - 1
		}
		fmt.Fprintf(&b, " [ %5d, %5d ] ", off/info.PieceLength, end/info.PieceLength)
	}
	if r.opts.MTime {
		if f.MTime.IsZero() {
			b.WriteString(strings.Repeat(" ", 20))
		} else {
			b.WriteString(Timestamp(f.MTime) + " ")
		}
	}
	if r.opts.Roots && len(f.Root.Hash) > 0 && !f.Root.IsZero() {
		b.WriteString(f.Root.Hex() + " ")
	}
	return b.String()
}

// blankColumns keeps directory rows aligned with file rows.
func (r *Renderer) blankColumns(v2 bool) string {
	var b strings.Builder
	if r.opts.Offsets {
		b.WriteString(strings.Repeat(" ", 12))
	}
	if r.opts.Size {
		b.WriteString(strings.Repeat(" ", 11))
	}
	if r.opts.Attributes {
		b.WriteString(strings.Repeat(" ", 6))
	}
	if r.opts.PieceRange {
		b.WriteString(strings.Repeat(" ", 18))
	}
	if r.opts.MTime {
		b.WriteString(strings.Repeat(" ", 20))
	}
	if r.opts.Roots && v2 {
		b.WriteString(strings.Repeat(" ", 65))
	}
	return b.String()
}

// Timestamp formats a time the way listings and the creation date line
// expect, UTC with no zone suffix. The zero time renders as "-".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func humanReadable(v int64) string {
	switch {
	case v > 1<<40:
		return fmt.Sprintf("%.2f TiB", float64(v)/(1<<40))
	case v > 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(v)/(1<<30))
	case v > 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(v)/(1<<20))
	case v > 1<<10:
		return fmt.Sprintf("%.2f kiB", float64(v)/(1<<10))
	default:
		return fmt.Sprintf("%d", v)
	}
}
