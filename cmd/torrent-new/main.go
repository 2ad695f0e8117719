package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strconv"

	"github.com/arvidn/torrent-tools/internal/builder"
	"github.com/arvidn/torrent-tools/internal/shared/models"
	"github.com/schollz/progressbar/v3"
)

// trackerFlag collects -t/-T in command-line order: -t opens a new tier,
// -T joins the current one (opening one if none exists).
type trackerFlag struct {
	tiers   *[][]string
	newTier bool
}

func (t trackerFlag) String() string { return "" }

func (t trackerFlag) Set(url string) error {
	if t.newTier || len(*t.tiers) == 0 {
		*t.tiers = append(*t.tiers, []string{url})
		return nil
	}
	last := len(*t.tiers) - 1
	(*t.tiers)[last] = append((*t.tiers)[last], url)
	return nil
}

type stringsFlag struct {
	values *[]string
}

func (s stringsFlag) String() string { return "" }

func (s stringsFlag) Set(v string) error {
	*s.values = append(*s.values, v)
	return nil
}

type nodesFlag struct {
	nodes *[]models.Node
}

func (n nodesFlag) String() string { return "" }

func (n nodesFlag) Set(v string) error {
	host, portStr, err := net.SplitHostPort(v)
	if err != nil {
		return fmt.Errorf("expected host:port, got %q", v)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q", portStr)
	}
	*n.nodes = append(*n.nodes, models.Node{Host: host, Port: port})
	return nil
}

func main() {
	var (
		out          string
		trackers     [][]string
		webSeeds     []string
		nodes        []models.Node
		creator      string
		comment      string
		private      bool
		v2Only       bool
		v1Only       bool
		mtime        bool
		pieceSizeKiB int64
		threads      int
		quiet        bool
	)

	flag.StringVar(&out, "o", "a.torrent", "write the torrent to this file")
	flag.StringVar(&out, "out", "a.torrent", "write the torrent to this file")
	flag.Var(trackerFlag{tiers: &trackers, newTier: true}, "t", "add a tracker URL in a new tier")
	flag.Var(trackerFlag{tiers: &trackers, newTier: true}, "tracker", "add a tracker URL in a new tier")
	flag.Var(trackerFlag{tiers: &trackers}, "T", "add a tracker URL to the current tier")
	flag.Var(trackerFlag{tiers: &trackers}, "tracker-tier", "add a tracker URL to the current tier")
	flag.Var(stringsFlag{values: &webSeeds}, "w", "add a web seed URL")
	flag.Var(stringsFlag{values: &webSeeds}, "web-seed", "add a web seed URL")
	flag.Var(nodesFlag{nodes: &nodes}, "dht-node", "add a DHT bootstrap node as host:port")
	flag.StringVar(&creator, "C", "torrent-tools", "set the created by field")
	flag.StringVar(&creator, "creator", "torrent-tools", "set the created by field")
	flag.StringVar(&comment, "c", "", "set the comment field")
	flag.StringVar(&comment, "comment", "", "set the comment field")
	flag.BoolVar(&private, "p", false, "set the private flag")
	flag.BoolVar(&private, "private", false, "set the private flag")
	flag.BoolVar(&v2Only, "2", false, "generate a v2-only torrent")
	flag.BoolVar(&v2Only, "v2-only", false, "generate a v2-only torrent")
	flag.BoolVar(&v1Only, "1", false, "generate a legacy v1-only torrent")
	flag.BoolVar(&v1Only, "v1-only", false, "generate a legacy v1-only torrent")
	flag.BoolVar(&mtime, "m", false, "record file modification times")
	flag.BoolVar(&mtime, "mtime", false, "record file modification times")
	flag.Int64Var(&pieceSizeKiB, "s", 0, "piece size in kiB, power of two, at least 16 (default: auto)")
	flag.Int64Var(&pieceSizeKiB, "piece-size", 0, "piece size in kiB, power of two, at least 16 (default: auto)")
	flag.IntVar(&threads, "threads", runtime.GOMAXPROCS(0), "number of hashing workers")
	flag.BoolVar(&quiet, "q", false, "suppress progress output")
	flag.BoolVar(&quiet, "quiet", false, "suppress progress output")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: torrent-new [OPTIONS] file-or-directory")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if v1Only && v2Only {
		fmt.Fprintln(os.Stderr, "--v1-only and --v2-only are mutually exclusive")
		os.Exit(1)
	}

	opts := builder.Options{
		OutputPath:   out,
		Trackers:     trackers,
		WebSeeds:     webSeeds,
		Nodes:        nodes,
		Comment:      comment,
		Creator:      creator,
		Private:      private,
		V2Only:       v2Only,
		V1Only:       v1Only,
		IncludeMTime: mtime,
		PieceLength:  pieceSizeKiB * 1024,
		Workers:      threads,
	}
	if !quiet {
		opts.Progress = func(total int64) func(int64) {
			bar := progressbar.DefaultBytes(total, "hashing")
			return func(n int64) { bar.Add64(n) }
		}
	}

	if _, err := builder.New(opts, logger).Build(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
