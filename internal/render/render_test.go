package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arvidn/torrent-tools/internal/shared/models"
	"github.com/stretchr/testify/assert"
)

func multiFileInfo() models.Info {
	return models.Info{
		Mode: models.ModeV1Only,
		Files: models.NewFileTree("root", false, []models.FileEntry{
			{Path: []string{"a", "x"}, Length: 5},
			{Path: []string{"a", "y"}, Length: 10},
			{Path: []string{"b", "z"}, Length: 15},
		}),
		PieceLength: 16384,
		Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}},
	}
}

func TestTreeShape(t *testing.T) {
	lines := New(Options{}).Tree(multiFileInfo())
	assert.Equal(t, []string{
		" └ root",
		"   ├ a",
		"   │ ├ x",
		"   │ └ y",
		"   └ b",
		"     └ z",
	}, lines)
}

func TestTreeSingleFile(t *testing.T) {
	info := models.Info{
		Mode:        models.ModeV1Only,
		Files:       models.NewFileTree("sample.bin", true, []models.FileEntry{{Length: 100}}),
		PieceLength: 16384,
		Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}},
	}
	lines := New(Options{}).Tree(info)
	assert.Equal(t, []string{" └ sample.bin"}, lines)
}

// validateTree checks the structural invariants of a rendered tree: the
// first row is the single root with a closing connector, every open
// ancestor column carries a glyph until its subtree is closed, and each
// row descends at most one level from the previous one.
func validateTree(t *testing.T, lines []string) {
	t.Helper()
	assert.NotEmpty(t, lines)

	type row struct {
		depth int
		last  bool
	}
	parse := func(line string) row {
		glyphs := []rune(line)
		depth := 0
		for i := 0; i+1 < len(glyphs); i += 2 {
			pair := string(glyphs[i : i+2])
			if pair == " │" || pair == "  " {
				depth++
				continue
			}
			assert.Contains(t, []string{" └", " ├"}, pair, "line %q has unexpected glyphs", line)
			return row{depth: depth, last: pair == " └"}
		}
		t.Fatalf("line %q has no connector", line)
		return row{}
	}

	first := parse(lines[0])
	assert.Zero(t, first.depth)
	assert.True(t, first.last, "first row is the lone root")

	open := []bool{}
	prevDepth := 0
	for i, line := range lines {
		r := parse(line)
		if i == 0 {
			open = append(open, !r.last)
			prevDepth = 0
			continue
		}
		assert.LessOrEqual(t, r.depth, prevDepth+1, "row %q jumps more than one level", line)

		// ancestor columns show a bar exactly while their tier is open
		glyphs := []rune(line)
		for d := 0; d < r.depth && d < len(open); d++ {
			pair := string(glyphs[d*2 : d*2+2])
			if open[d] {
				assert.Equal(t, " │", pair, "row %q closes column %d early", line, d)
			} else {
				assert.Equal(t, "  ", pair, "row %q draws a stale bar at %d", line, d)
			}
		}

		open = open[:r.depth]
		open = append(open, !r.last)
		prevDepth = r.depth
	}
}

func TestTreeInvariants(t *testing.T) {
	info := models.Info{
		Mode: models.ModeV1Only,
		Files: models.NewFileTree("root", false, []models.FileEntry{
			{Path: []string{"a", "deep", "deeper", "f1"}, Length: 1},
			{Path: []string{"a", "deep", "f2"}, Length: 2},
			{Path: []string{"a", "f3"}, Length: 3},
			{Path: []string{"b", "f4"}, Length: 4},
			{Path: []string{"f5"}, Length: 5},
		}),
		PieceLength: 16384,
		Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}},
	}
	validateTree(t, New(Options{}).Tree(info))
	validateTree(t, New(Options{}).Tree(multiFileInfo()))
}

func TestTreeDefaultColumns(t *testing.T) {
	lines := New(DefaultOptions()).Tree(multiFileInfo())
	// directory rows carry blanks so names line up with file rows
	assert.Equal(t, strings.Repeat(" ", 17)+" └ root", lines[0])
	assert.Equal(t, fmt.Sprintf("%11d ---- ", 5)+"   │ ├ x", lines[2])
}

func TestTreePadFiles(t *testing.T) {
	info := models.Info{
		Mode: models.ModeV1Only,
		Files: models.NewFileTree("root", false, []models.FileEntry{
			{Path: []string{"a"}, Length: 10},
			{Path: []string{".pad", "16374"}, Length: 16374, PadFile: true},
			{Path: []string{"b"}, Length: 5},
		}),
		PieceLength: 16384,
		Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}, {Hash: bytes.Repeat([]byte{0xbb}, 20)}},
	}

	hidden := New(Options{}).Tree(info)
	assert.Equal(t, []string{" └ root", "   ├ a", "   └ b"}, hidden)

	shown := New(Options{ShowPad: true, Attributes: true}).Tree(info)
	joined := strings.Join(shown, "\n")
	assert.Contains(t, joined, ".pad")
	assert.Contains(t, joined, " p--- ")
}

func TestFlatListing(t *testing.T) {
	lines := New(DefaultOptions()).Flat(multiFileInfo())
	assert.Equal(t, []string{
		fmt.Sprintf("%11d ---- root/a/x", 5),
		fmt.Sprintf("%11d ---- root/a/y", 10),
		fmt.Sprintf("%11d ---- root/b/z", 15),
	}, lines)
}

func TestFlatColumns(t *testing.T) {
	info := models.Info{
		Mode: models.ModeV1Only,
		Files: models.NewFileTree("root", false, []models.FileEntry{
			{Path: []string{"a"}, Length: 20000, MTime: time.Unix(1609620000, 0).UTC()},
			{Path: []string{"b"}, Length: 5000},
		}),
		PieceLength: 16384,
		Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}, {Hash: bytes.Repeat([]byte{0xbb}, 20)}},
	}
	lines := New(Options{Offsets: true, Size: true, Attributes: true, PieceRange: true, MTime: true}).Flat(info)
	assert.Equal(t, []string{
		fmt.Sprintf("%11d %11d ----  [ %5d, %5d ] %s root/a", 0, 20000, 0, 1, "2021-01-02 20:40:00"),
		fmt.Sprintf("%11d %11d ----  [ %5d, %5d ] %s root/b", 20000, 5000, 1, 1, strings.Repeat(" ", 19)),
	}, lines)
}

func TestFlatRoots(t *testing.T) {
	root := models.Hash{Hash: bytes.Repeat([]byte{0xcd}, 32)}
	info := models.Info{
		Mode: models.ModeV2Only,
		Files: models.NewFileTree("root", false, []models.FileEntry{
			{Path: []string{"a"}, Length: 100, Root: root},
			{Path: []string{"empty"}, Root: models.Hash{Hash: make([]byte, 32)}},
		}),
		PieceLength: 16384,
	}
	lines := New(Options{Roots: true}).Flat(info)
	assert.Equal(t, root.Hex()+" root/a", lines[0])
	// the all-zero root of an empty file is not shown
	assert.Equal(t, "root/empty", lines[1])
}

func TestHumanReadable(t *testing.T) {
	var tests = []struct {
		name     string
		given    int64
		expected string
	}{
		{name: "bytes stay bare", given: 512, expected: "512"},
		{name: "kibibytes", given: 20000, expected: "19.53 kiB"},
		{name: "mebibytes", given: 5 << 20, expected: "5.00 MiB"},
		{name: "gibibytes", given: 3 << 30, expected: "3.00 GiB"},
		{name: "tebibytes", given: 2 << 40, expected: "2.00 TiB"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanReadable(tt.given))
		})
	}
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "-", Timestamp(time.Time{}))
	assert.Equal(t, "2021-01-02 20:40:00", Timestamp(time.Unix(1609620000, 0)))
}

func sampleMetainfo() models.Metainfo {
	return models.Metainfo{
		Info: models.Info{
			Mode:        models.ModeHybrid,
			Files:       models.NewFileTree("sample.bin", true, []models.FileEntry{{Length: 9000, Root: models.Hash{Hash: bytes.Repeat([]byte{0x11}, 32)}}}),
			PieceLength: 16384,
			Private:     true,
			Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xab}, 20)}},
		},
		AnnounceList: [][]string{
			{"https://t1a.com/a", "https://t1b.com/a"},
			{"https://t2.com/a"},
		},
		Comment:      "foobar",
		CreatedBy:    "torrent-tools",
		CreationDate: time.Unix(1609620000, 0).UTC(),
		Nodes:        []models.Node{{Host: "router1.com", Port: 6881}},
		WebSeeds:     []string{"https://web.com/file"},
		HTTPSeeds:    []string{"https://old.com/seed"},
		InfoHashV1:   models.Hash{Hash: bytes.Repeat([]byte{0x01}, 20)},
		InfoHashV2:   models.Hash{Hash: bytes.Repeat([]byte{0x02}, 32)},
	}
}

func TestReportAll(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, sampleMetainfo(), Sections{All: true}, DefaultOptions())
	out := buf.String()

	expected := []string{
		"nodes:",
		"router1.com: 6881",
		"trackers:",
		" 0: https://t1a.com/a",
		" 0: https://t1b.com/a",
		" 1: https://t2.com/a",
		"web seeds:",
		"BEP19 https://web.com/file",
		"BEP17 https://old.com/seed",
		"piece-count: 1",
		"piece size: 16384",
		"info hash: v1: " + strings.Repeat("01", 20) + " v2: " + strings.Repeat("02", 32),
		"comment: foobar",
		"created by: torrent-tools",
		"creation date: 2021-01-02 20:40:00",
		"private: yes",
		"name: sample.bin",
		"number of files: 1",
		"files:",
		fmt.Sprintf("%11d ---- ", 9000) + " └ sample.bin",
	}
	assert.Equal(t, expected, strings.Split(strings.TrimRight(out, "\n"), "\n"))
}

func TestReportSelectedSections(t *testing.T) {
	m := sampleMetainfo()

	var buf bytes.Buffer
	Report(&buf, m, Sections{Name: true}, DefaultOptions())
	assert.Equal(t, "name: sample.bin\n", buf.String())

	buf.Reset()
	Report(&buf, m, Sections{InfoHash: true, PieceCount: true}, DefaultOptions())
	assert.Equal(t, "piece-count: 1\ninfo hash: v1: "+strings.Repeat("01", 20)+" v2: "+strings.Repeat("02", 32)+"\n", buf.String())

	// a private section request prints "no" when the flag is unset
	m.Info.Private = false
	buf.Reset()
	Report(&buf, m, Sections{Private: true}, DefaultOptions())
	assert.Equal(t, "private: no\n", buf.String())
}

func TestReportOmitsEmptyOptionalSections(t *testing.T) {
	m := models.Metainfo{
		Info: models.Info{
			Mode:        models.ModeV1Only,
			Files:       models.NewFileTree("x", true, []models.FileEntry{{Length: 10}}),
			PieceLength: 16384,
			Pieces:      []models.Hash{{Hash: bytes.Repeat([]byte{0xaa}, 20)}},
		},
		InfoHashV1: models.Hash{Hash: bytes.Repeat([]byte{0x01}, 20)},
	}
	var buf bytes.Buffer
	Report(&buf, m, Sections{All: true}, DefaultOptions())
	out := buf.String()
	assert.NotContains(t, out, "trackers:")
	assert.NotContains(t, out, "web seeds:")
	assert.NotContains(t, out, "nodes:")
	assert.NotContains(t, out, "comment:")
	assert.NotContains(t, out, "creation date:")
	assert.NotContains(t, out, "private:")
	assert.Contains(t, out, "info hash: v1: "+strings.Repeat("01", 20)+"\n")
}

func TestReportFlat(t *testing.T) {
	m := sampleMetainfo()
	m.Info.Files = models.NewFileTree("root", false, []models.FileEntry{
		{Path: []string{"a"}, Length: 5},
	})
	m.Info.Pieces = []models.Hash{{Hash: bytes.Repeat([]byte{0xab}, 20)}}

	var buf bytes.Buffer
	Report(&buf, m, Sections{Files: true, Flat: true}, Options{})
	assert.Equal(t, "files:\nroot/a\n", buf.String())
}
