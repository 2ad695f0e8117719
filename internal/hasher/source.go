package hasher

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Source opens the content of one file entry. Hashing opens, reads and
// closes each file deterministically; no handle outlives the call that
// opened it. Pad files never reach a Source, their zero content is
// synthesized by the hashers.
type Source interface {
	Open(f models.FileEntry) (io.ReadCloser, error)
}

// OSSource reads files from disk. Base is the directory containing the
// torrent root (the parent of the scanned file or directory), Name the
// torrent name.
type OSSource struct {
	Base string
	Name string
}

func (s OSSource) Open(f models.FileEntry) (io.ReadCloser, error) {
	parts := append([]string{s.Base, s.Name}, f.Path...)
	return os.Open(filepath.Join(parts...))
}

// zeroReader yields n zero bytes, used for pad file content.
type zeroReader struct {
	n int64
}

func (z *zeroReader) Read(p []byte) (int, error) {
	if z.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > z.n {
		p = p[:z.n]
	}
	for i := range p {
		p[i] = 0
	}
	z.n -= int64(len(p))
	return len(p), nil
}

func openEntry(src Source, f models.FileEntry) (io.ReadCloser, error) {
	if f.PadFile {
		return io.NopCloser(&zeroReader{n: f.Length}), nil
	}
	return src.Open(f)
}
