package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arvidn/torrent-tools/internal/decoder"
	"github.com/arvidn/torrent-tools/internal/render"
)

func main() {
	var sections render.Sections
	fileOpts := render.DefaultOptions()
	noFileSize := false
	noFileAttributes := false

	flag.BoolVar(&sections.Files, "f", false, "list files")
	flag.BoolVar(&sections.Files, "files", false, "list files")
	flag.BoolVar(&sections.PieceCount, "n", false, "print the number of pieces")
	flag.BoolVar(&sections.PieceCount, "piece-count", false, "print the number of pieces")
	flag.BoolVar(&sections.PieceSize, "piece-size", false, "print the piece size")
	flag.BoolVar(&sections.InfoHash, "info-hash", false, "print the info-hash(es)")
	flag.BoolVar(&sections.Comment, "comment", false, "print the comment field")
	flag.BoolVar(&sections.Creator, "creator", false, "print the created by field")
	flag.BoolVar(&sections.Date, "date", false, "print the creation date")
	flag.BoolVar(&sections.Name, "name", false, "print the torrent name")
	flag.BoolVar(&sections.Private, "private", false, "print the private flag")
	flag.BoolVar(&sections.Trackers, "trackers", false, "print trackers")
	flag.BoolVar(&sections.WebSeeds, "web-seeds", false, "print web seeds")
	flag.BoolVar(&sections.DHTNodes, "dht-nodes", false, "print DHT nodes")

	flat := flag.Bool("flat", false, "list files as a flat list")
	flag.Bool("tree", true, "list files as a tree (default)")
	flag.BoolVar(&fileOpts.MTime, "file-mtime", false, "show file modification times")
	flag.BoolVar(&fileOpts.Offsets, "file-offsets", false, "show file byte offsets")
	flag.BoolVar(&fileOpts.PieceRange, "file-piece-range", false, "show first and last piece index per file")
	flag.BoolVar(&fileOpts.Roots, "file-roots", false, "show v2 merkle root hashes")
	flag.BoolVar(&fileOpts.HumanReadable, "H", false, "print sizes with SI prefixed units")
	flag.BoolVar(&fileOpts.HumanReadable, "human-readable", false, "print sizes with SI prefixed units")
	flag.BoolVar(&fileOpts.ShowPad, "show-padfiles", false, "show pad files in the listing")
	flag.BoolVar(&noFileSize, "no-file-size", false, "hide file sizes")
	flag.BoolVar(&noFileAttributes, "no-file-attributes", false, "hide file attribute flags")
	flag.Parse()

	fileOpts.Size = !noFileSize
	fileOpts.Attributes = !noFileAttributes
	sections.Flat = *flat

	// with no section flag, print everything
	sections.All = !(sections.Files || sections.PieceCount || sections.PieceSize ||
		sections.InfoHash || sections.Comment || sections.Creator || sections.Date ||
		sections.Name || sections.Private || sections.Trackers || sections.WebSeeds ||
		sections.DHTNodes)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: torrent-print [OPTIONS] torrent-files...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	d := decoder.NewDecoder()
	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %v\n", err)
			os.Exit(1)
		}
		m, err := d.Decode(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %v\n", err)
			os.Exit(1)
		}
		if flag.NArg() > 1 {
			fmt.Printf("%s:\n", path)
		}
		render.Report(os.Stdout, m, sections, fileOpts)
	}
}
