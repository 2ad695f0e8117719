package hasher

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// zeroHash is the sentinel leaf used to pad a file's block hashes up to
// the shape the merkle tree needs.
var zeroHash [32]byte

// v2Hash computes the BEP52 pieces root and piece layer for every
// non-pad entry. Files are independent, so they are hashed by a pool of
// workers; each worker writes into its own entry slot, so the result
// never depends on completion order.
func v2Hash(src Source, tree *models.FileTree, pieceLength int64, workers int, progress func(n int64)) error {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f := &tree.Entries[i]
				root, layer, err := hashFile(src, *f, tree.Name, pieceLength, progress)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				f.Root = models.Hash{Hash: root}
				f.Layer = layer
			}
		}()
	}

	for i := range tree.Entries {
		if !tree.Entries[i].PadFile {
			jobs <- i
		}
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

func hashFile(src Source, f models.FileEntry, name string, pieceLength int64, progress func(n int64)) ([]byte, []models.Hash, error) {
	if f.Length == 0 {
		// well-known root for empty files
		return make([]byte, 32), nil, nil
	}

	r, err := src.Open(f)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	leaves, err := blockHashes(r, f.Length, progress)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing %s: %w", f.DisplayPath(name), err)
	}
	root, layer := fileMerkle(leaves, f.Length, pieceLength)
	return root, layer, nil
}

// blockHashes returns the SHA-256 of every 16 KiB block. The final block
// is hashed over just the bytes the file has; only whole missing leaves
// pad with the zero-hash sentinel.
func blockHashes(r io.Reader, length int64, progress func(n int64)) ([][32]byte, error) {
	numBlocks := (length + models.BlockSize - 1) / models.BlockSize
	leaves := make([][32]byte, 0, numBlocks)
	buf := make([]byte, models.BlockSize)
	var read int64
	for read < length {
		chunk := int64(models.BlockSize)
		if remaining := length - read; remaining < chunk {
			chunk = remaining
		}
		n, err := io.ReadFull(r, buf[:chunk])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, sha256.Sum256(buf[:n]))
		read += int64(n)
		if progress != nil {
			progress(int64(n))
		}
	}
	return leaves, nil
}

// fileMerkle builds the tree over the leaf hashes. Files larger than one
// piece additionally get their piece layer: the row of the tree where
// each node covers exactly one piece's worth of leaves.
func fileMerkle(leaves [][32]byte, length, pieceLength int64) ([]byte, []models.Hash) {
	blocksPerPiece := pieceLength / models.BlockSize

	if length <= pieceLength {
		root := merkleRoot(padToPow2(leaves, zeroHash))
		return root[:], nil
	}

	// pad the leaf row to whole pieces, then roll each piece's leaves
	// up to one node
	for int64(len(leaves))%blocksPerPiece != 0 {
		leaves = append(leaves, zeroHash)
	}
	numPieces := int64(len(leaves)) / blocksPerPiece
	layer := make([]models.Hash, 0, numPieces)
	nodes := make([][32]byte, 0, numPieces)
	for p := int64(0); p < numPieces; p++ {
		node := merkleRoot(leaves[p*blocksPerPiece : (p+1)*blocksPerPiece])
		nodes = append(nodes, node)
		layer = append(layer, models.Hash{Hash: append([]byte(nil), node[:]...)})
	}

	// the pad hash above the leaf row is the root of a piece's worth of
	// zero leaves, not the zero hash itself
	padPiece := merkleRoot(padToPow2(nil, zeroHash, blocksPerPiece))
	root := merkleRoot(padToPow2(nodes, padPiece))
	return root[:], layer
}

// merkleRoot folds a power-of-two row of hashes pairwise up to one node.
func merkleRoot(row [][32]byte) [32]byte {
	if len(row) == 0 {
		return zeroHash
	}
	level := append([][32]byte(nil), row...)
	for len(level) > 1 {
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			var pair [64]byte
			copy(pair[:32], level[i][:])
			copy(pair[32:], level[i+1][:])
			h := sha256.Sum256(pair[:])
			next = append(next, h)
		}
		level = next
	}
	return level[0]
}

// padToPow2 extends row with pad up to the next power of two, or to the
// explicit minimum when given.
func padToPow2(row [][32]byte, pad [32]byte, atLeast ...int64) [][32]byte {
	target := int64(1)
	if len(atLeast) > 0 {
		target = atLeast[0]
	}
	for target < int64(len(row)) {
		target *= 2
	}
	out := append([][32]byte(nil), row...)
	for int64(len(out)) < target {
		out = append(out, pad)
	}
	return out
}
