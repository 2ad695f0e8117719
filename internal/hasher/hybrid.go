package hasher

import (
	"fmt"
	"strconv"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// insertPadFiles rounds every file except the last up to a piece
// boundary by appending a synthetic zero-content pad entry, so that v1
// piece boundaries coincide with v2 block boundaries at every file
// start. Entry order is preserved, pads sit immediately after the file
// they pad.
func insertPadFiles(tree models.FileTree, pieceLength int64) (models.FileTree, error) {
	padded := models.FileTree{Name: tree.Name, SingleFile: tree.SingleFile}
	for i, f := range tree.Entries {
		padded.Entries = append(padded.Entries, f)
		if i == len(tree.Entries)-1 {
			break
		}
		if rem := f.Length % pieceLength; rem != 0 {
			padLen := pieceLength - rem
			padded.Entries = append(padded.Entries, models.FileEntry{
				Path:    []string{".pad", strconv.FormatInt(padLen, 10)},
				Length:  padLen,
				PadFile: true,
			})
		}
	}

	// defensive: every non-final entry must now start and end on a
	// piece boundary
	var offset int64
	for _, f := range padded.Entries {
		if offset%pieceLength != 0 {
			return models.FileTree{}, fmt.Errorf("%w: %s starts at offset %d",
				models.ErrAlignmentImpossible, f.DisplayPath(padded.Name), offset)
		}
		offset += f.Length
	}
	return padded, nil
}
