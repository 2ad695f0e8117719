// Package builder scans a file or directory, hashes it, and writes a
// metainfo file. The output never appears at its final path until the
// full torrent has been assembled and verified.
package builder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arvidn/torrent-tools/internal/bencode"
	"github.com/arvidn/torrent-tools/internal/hasher"
	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Options carries every builder input. There is no ambient state: two
// runs with equal Options over equal content produce identical bytes.
type Options struct {
	OutputPath string
	// Trackers groups announce URLs into tiers, outer order meaningful.
	Trackers     [][]string
	WebSeeds     []string
	Nodes        []models.Node
	Comment      string
	Creator      string
	Private      bool
	V2Only       bool
	V1Only       bool
	IncludeMTime bool
	// PieceLength in bytes, 0 for auto-selection.
	PieceLength int64
	Workers     int
	// Progress, when non-nil, is called once with the total content
	// byte count and returns the per-chunk callback the hasher reports
	// to.
	Progress func(total int64) func(n int64)
}

type Builder struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Builder {
	return &Builder{opts: opts, log: logger}
}

func (b *Builder) mode() models.InfoMode {
	switch {
	case b.opts.V2Only:
		return models.ModeV2Only
	case b.opts.V1Only:
		return models.ModeV1Only
	default:
		return models.ModeHybrid
	}
}

// Build creates the metainfo for inputPath and writes it to the output
// path. The returned metainfo is the same data the file holds.
func (b *Builder) Build(inputPath string) (models.Metainfo, error) {
	tree, base, err := Scan(inputPath, b.opts.IncludeMTime)
	if err != nil {
		return models.Metainfo{}, err
	}
	b.log.Info("scanned input",
		slog.String("name", tree.Name),
		slog.Int("files", tree.NumFiles()),
		slog.Int64("total_bytes", tree.TotalLength()))

	var progress func(n int64)
	if b.opts.Progress != nil {
		progress = b.opts.Progress(tree.TotalLength())
	}
	info, err := hasher.Hash(hasher.OSSource{Base: base, Name: tree.Name}, tree, hasher.Options{
		PieceLength: b.opts.PieceLength,
		Mode:        b.mode(),
		Workers:     b.opts.Workers,
		Progress:    progress,
	})
	if err != nil {
		return models.Metainfo{}, err
	}
	info.Private = b.opts.Private

	m := models.Metainfo{
		Info:         info,
		AnnounceList: b.opts.Trackers,
		Comment:      b.opts.Comment,
		CreatedBy:    b.opts.Creator,
		Nodes:        b.opts.Nodes,
		WebSeeds:     webSeedURLs(b.opts.WebSeeds, info.Files.SingleFile),
	}
	if b.opts.IncludeMTime {
		m.CreationDate = info.Files.LatestMTime()
	}

	data, infoBytes, err := Assemble(m)
	if err != nil {
		return models.Metainfo{}, err
	}
	m.InfoHashV1, m.InfoHashV2 = InfoHashes(infoBytes, info.Mode)

	if err := writeAtomic(b.opts.OutputPath, data); err != nil {
		return models.Metainfo{}, err
	}
	b.log.Info("wrote torrent",
		slog.String("path", b.opts.OutputPath),
		slog.Int("bytes", len(data)))
	return m, nil
}

// webSeedURLs applies the BEP19 path rule: a web seed for a multi-file
// torrent is a base URL and gets a trailing slash, a single-file seed is
// stored exactly as given.
func webSeedURLs(urls []string, singleFile bool) []string {
	if singleFile {
		return urls
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		out = append(out, u)
	}
	return out
}

// writeAtomic writes to a temp file in the target directory, re-decodes
// the bytes strictly as a self check, and renames into place. A failed
// build leaves no output behind.
func writeAtomic(path string, data []byte) error {
	if _, err := bencode.DecodeStrict(data); err != nil {
		return fmt.Errorf("self check of produced torrent failed: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
