// Package hasher turns a file tree into an info dictionary: it selects
// or validates the piece length, inserts hybrid pad files, and computes
// the v1 piece hashes and/or the BEP52 merkle roots and piece layers.
package hasher

import (
	"sync"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Options configures one hashing run.
type Options struct {
	// PieceLength in bytes; 0 auto-selects from the content size.
	PieceLength int64
	Mode        models.InfoMode
	// Workers bounds the parallel per-file v2 hashing; 0 means one.
	Workers int
	// Progress, when set, is called with the number of content bytes
	// hashed as work proceeds.
	Progress func(n int64)
}

// Hash builds the immutable info data for tree. In hybrid mode the
// returned info's file tree includes the inserted pad files.
func Hash(src Source, tree models.FileTree, opts Options) (models.Info, error) {
	pieceLength := opts.PieceLength
	if pieceLength == 0 {
		pieceLength = AutoPieceLength(tree.TotalLength())
	}
	if err := ValidatePieceLength(pieceLength); err != nil {
		return models.Info{}, err
	}

	if opts.Mode == models.ModeHybrid {
		var err error
		tree, err = insertPadFiles(tree, pieceLength)
		if err != nil {
			return models.Info{}, err
		}
	}

	// v1 walks the concatenated stream sequentially while v2 fans out
	// across files; the two only meet again here. Progress is reported
	// from whichever pass covers all content bytes exactly once.
	var v1Progress, v2Progress func(int64)
	if opts.Mode.HasV1() {
		v1Progress = opts.Progress
	} else {
		v2Progress = opts.Progress
	}

	var wg sync.WaitGroup
	var pieces []models.Hash
	var v1Err, v2Err error

	if opts.Mode.HasV1() {
		// snapshot the entries so the v1 pass never touches the slots
		// the v2 workers write roots into
		v1Tree := tree
		v1Tree.Entries = append([]models.FileEntry(nil), tree.Entries...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pieces, v1Err = v1Pieces(src, v1Tree, pieceLength, v1Progress)
		}()
	}
	if opts.Mode.HasV2() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v2Err = v2Hash(src, &tree, pieceLength, opts.Workers, v2Progress)
		}()
	}
	wg.Wait()

	if v1Err != nil {
		return models.Info{}, v1Err
	}
	if v2Err != nil {
		return models.Info{}, v2Err
	}

	return models.Info{
		Mode:        opts.Mode,
		Files:       tree,
		PieceLength: pieceLength,
		Pieces:      pieces,
	}, nil
}
