package render

import (
	"fmt"
	"io"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Sections selects what Report prints. The zero value with All set
// prints every section the torrent has data for.
type Sections struct {
	All bool

	Files      bool
	PieceCount bool
	PieceSize  bool
	InfoHash   bool
	Comment    bool
	Creator    bool
	Date       bool
	Name       bool
	Private    bool
	Trackers   bool
	WebSeeds   bool
	DHTNodes   bool

	// Flat switches the files section from the tree to the flat list.
	Flat bool
}

// Report writes the requested sections of one torrent. Labels here are
// the stable surface other tooling greps, so they never change shape.
func Report(w io.Writer, m models.Metainfo, sections Sections, fileOpts Options) {
	all := sections.All

	if (all && len(m.Nodes) > 0) || sections.DHTNodes {
		fmt.Fprintln(w, "nodes:")
		for _, n := range m.Nodes {
			fmt.Fprintf(w, "%s: %d\n", n.Host, n.Port)
		}
	}
	trackers := m.Trackers()
	if (all && len(trackers) > 0) || sections.Trackers {
		fmt.Fprintln(w, "trackers:")
		for _, t := range trackers {
			fmt.Fprintf(w, "%2d: %s\n", t.Tier, t.URL)
		}
	}
	if (all && (len(m.WebSeeds) > 0 || len(m.HTTPSeeds) > 0)) || sections.WebSeeds {
		fmt.Fprintln(w, "web seeds:")
		for _, u := range m.WebSeeds {
			fmt.Fprintf(w, "BEP19 %s\n", u)
		}
		for _, u := range m.HTTPSeeds {
			fmt.Fprintf(w, "BEP17 %s\n", u)
		}
	}
	if all || sections.PieceCount {
		fmt.Fprintf(w, "piece-count: %d\n", m.Info.NumPieces())
	}
	if all || sections.PieceSize {
		fmt.Fprintf(w, "piece size: %d\n", m.Info.PieceLength)
	}
	if all || sections.InfoHash {
		fmt.Fprint(w, "info hash:")
		if m.Info.Mode.HasV1() {
			fmt.Fprintf(w, " v1: %s", m.InfoHashV1.Hex())
		}
		if m.Info.Mode.HasV2() {
			fmt.Fprintf(w, " v2: %s", m.InfoHashV2.Hex())
		}
		fmt.Fprintln(w)
	}
	if (all && m.Comment != "") || sections.Comment {
		fmt.Fprintf(w, "comment: %s\n", m.Comment)
	}
	if (all && m.CreatedBy != "") || sections.Creator {
		fmt.Fprintf(w, "created by: %s\n", m.CreatedBy)
	}
	if (all && !m.CreationDate.IsZero()) || sections.Date {
		fmt.Fprintf(w, "creation date: %s\n", Timestamp(m.CreationDate))
	}
	if (all && m.Info.Private) || sections.Private {
		private := "no"
		if m.Info.Private {
			private = "yes"
		}
		fmt.Fprintf(w, "private: %s\n", private)
	}
	if all || sections.Name {
		fmt.Fprintf(w, "name: %s\n", m.Info.Files.Name)
	}
	if all {
		fmt.Fprintf(w, "number of files: %d\n", m.Info.Files.NumFiles())
	}
	if all || sections.Files {
		fmt.Fprintln(w, "files:")
		r := New(fileOpts)
		var lines []string
		if sections.Flat {
			lines = r.Flat(m.Info)
		} else {
			lines = r.Tree(m.Info)
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}
}
