package hasher

import (
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// v1Pieces hashes the logical concatenation of every entry's bytes, in
// tree order, split into pieceLength pieces with the last piece short.
// A piece may span a file boundary, so the digest state carries across
// files; the stream is processed incrementally and never buffered whole.
func v1Pieces(src Source, tree models.FileTree, pieceLength int64, progress func(n int64)) ([]models.Hash, error) {
	var pieces []models.Hash
	digest := sha1.New()
	var inPiece int64

	buf := make([]byte, 64<<10)
	for _, f := range tree.Entries {
		r, err := openEntry(src, f)
		if err != nil {
			return nil, err
		}
		report := progress
		if f.PadFile {
			// pad zeros are synthetic, not content
			report = nil
		}
		var read int64
		for read < f.Length {
			chunk := int64(len(buf))
			if remaining := f.Length - read; remaining < chunk {
				chunk = remaining
			}
			if space := pieceLength - inPiece; space < chunk {
				chunk = space
			}
			n, err := io.ReadFull(r, buf[:chunk])
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("reading %s: %w", f.DisplayPath(tree.Name), err)
			}
			digest.Write(buf[:n])
			read += int64(n)
			inPiece += int64(n)
			if report != nil {
				report(int64(n))
			}
			if inPiece == pieceLength {
				pieces = append(pieces, models.Hash{Hash: digest.Sum(nil)})
				digest.Reset()
				inPiece = 0
			}
		}
		r.Close()
	}
	if inPiece > 0 {
		pieces = append(pieces, models.Hash{Hash: digest.Sum(nil)})
	}
	return pieces, nil
}
