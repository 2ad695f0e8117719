package hasher

import (
	"fmt"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

const (
	// targetPieceCount bounds the v1 piece list when auto-selecting a
	// piece length: the pieces string stays at or under 40 KiB.
	targetPieceCount = 2048
	maxPieceLength   = 16 << 20
)

// ValidatePieceLength enforces the format invariant: a power of two of at
// least 16 KiB.
func ValidatePieceLength(n int64) error {
	if n < models.MinPieceLength {
		return fmt.Errorf("%w: %d is smaller than %d", models.ErrInvalidPieceSize, n, models.MinPieceLength)
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: %d is not a power of two", models.ErrInvalidPieceSize, n)
	}
	return nil
}

// AutoPieceLength picks the smallest valid piece length that keeps the
// piece count within the target range, capped at 16 MiB pieces for very
// large content.
func AutoPieceLength(totalLength int64) int64 {
	pieceLength := int64(models.MinPieceLength)
	for pieceLength < maxPieceLength && (totalLength+pieceLength-1)/pieceLength > targetPieceCount {
		pieceLength *= 2
	}
	return pieceLength
}
