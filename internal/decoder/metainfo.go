// Package decoder parses metainfo files back into the model. Parsing is
// lenient about non-canonical bencoding since the file may come from any
// client, but the structural invariants of the format are enforced.
package decoder

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	internal "github.com/arvidn/torrent-tools/internal/bencode"
	"github.com/arvidn/torrent-tools/internal/shared/models"
	"github.com/zeebo/bencode"
)

type MetainfoDecoder interface {
	Decode(io.Reader) (models.Metainfo, error)
}

type decoder struct{}

func NewDecoder() MetainfoDecoder {
	return decoder{}
}

// serialization struct for the outer dictionary. Info is kept as a
// RawMessage so the info-hash is computed over the exact stored bytes,
// whatever shape the dictionary has.
type bencodeTorrent struct {
	Announce     string               `bencode:"announce"`
	AnnounceList [][]string           `bencode:"announce-list"`
	Comment      string               `bencode:"comment"`
	CreatedBy    string               `bencode:"created by"`
	CreationDate int64                `bencode:"creation date"`
	HTTPSeeds    []string             `bencode:"httpseeds"`
	URLList      bencode.RawMessage   `bencode:"url-list"`
	Nodes        []bencode.RawMessage `bencode:"nodes"`
	PieceLayers  map[string]string    `bencode:"piece layers"`
	Info         bencode.RawMessage   `bencode:"info"`
}

type bencodeInfo struct {
	Name        string        `bencode:"name"`
	PieceLength int64         `bencode:"piece length"`
	Pieces      string        `bencode:"pieces"`
	Length      int64         `bencode:"length"`
	MTime       int64         `bencode:"mtime"`
	Files       []bencodeFile `bencode:"files"`
	Private     int64         `bencode:"private"`
	MetaVersion int64         `bencode:"meta version"`
}

type bencodeFile struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
	Attr   string   `bencode:"attr"`
	MTime  int64    `bencode:"mtime"`
}

func (decoder) Decode(torrent io.Reader) (models.Metainfo, error) {
	var m models.Metainfo

	raw, err := io.ReadAll(torrent)
	if err != nil {
		return m, err
	}

	var bt bencodeTorrent
	if err := bencode.DecodeBytes(raw, &bt); err != nil {
		return m, fmt.Errorf("%w: %w", internal.ErrMalformedEncoding, err)
	}
	if len(bt.Info) == 0 {
		return m, fmt.Errorf("%w: info", models.ErrMissingField)
	}

	// a second pass over the raw info bytes through the value decoder;
	// key presence and the nested file tree need the generic form
	infoVal, err := internal.Decode(bt.Info)
	if err != nil {
		return m, err
	}
	var bi bencodeInfo
	if err := bencode.DecodeBytes(bt.Info, &bi); err != nil {
		return m, fmt.Errorf("%w: %w", internal.ErrMalformedEncoding, err)
	}

	_, hasPieces := infoVal.Get("pieces")
	fileTree, hasFileTree := infoVal.Get("file tree")
	hasV2 := hasFileTree && bi.MetaVersion == 2
	if bi.MetaVersion != 0 && bi.MetaVersion != 2 {
		return m, fmt.Errorf("%w: meta version %d", models.ErrUnsupportedVersion, bi.MetaVersion)
	}
	if !hasPieces && !hasV2 {
		return m, fmt.Errorf("%w: neither v1 nor v2 info fields present", models.ErrUnsupportedVersion)
	}

	if bi.Name == "" {
		return m, fmt.Errorf("%w: name", models.ErrMissingField)
	}
	if bi.PieceLength == 0 {
		return m, fmt.Errorf("%w: piece length", models.ErrMissingField)
	}

	var mode models.InfoMode
	switch {
	case hasPieces && hasV2:
		mode = models.ModeHybrid
	case hasPieces:
		mode = models.ModeV1Only
	default:
		mode = models.ModeV2Only
	}

	tree, err := reconstructTree(bi, fileTree, mode)
	if err != nil {
		return m, err
	}
	if hasV2 {
		if err := attachPieceLayers(&tree, bt.PieceLayers, bi.PieceLength); err != nil {
			return m, err
		}
	}

	info := models.Info{
		Mode:        mode,
		Files:       tree,
		PieceLength: bi.PieceLength,
		Private:     bi.Private == 1,
	}
	if hasPieces {
		info.Pieces, err = splitPieces(bi.Pieces, tree.TotalLength(), bi.PieceLength)
		if err != nil {
			return m, err
		}
	}

	m.Info = info
	m.AnnounceList = announceTiers(bt)
	m.Comment = bt.Comment
	m.CreatedBy = bt.CreatedBy
	if bt.CreationDate != 0 {
		m.CreationDate = time.Unix(bt.CreationDate, 0).UTC()
	}
	m.HTTPSeeds = bt.HTTPSeeds
	m.WebSeeds = parseURLList(bt.URLList)
	m.Nodes = parseNodes(bt.Nodes)

	if mode.HasV1() {
		sum := sha1.Sum(bt.Info)
		m.InfoHashV1 = models.Hash{Hash: sum[:]}
	}
	if mode.HasV2() {
		sum := sha256.Sum256(bt.Info)
		m.InfoHashV2 = models.Hash{Hash: sum[:]}
	}
	return m, nil
}

// reconstructTree rebuilds the file tree from whichever representation
// the info dictionary carries. When both are present the v1 files list
// drives the entry order (it includes pad files) and the v2 tree
// supplies the roots.
func reconstructTree(bi bencodeInfo, fileTree internal.Value, mode models.InfoMode) (models.FileTree, error) {
	if mode.HasV1() {
		var entries []models.FileEntry
		single := len(bi.Files) == 0
		if single {
			e := models.FileEntry{Length: bi.Length}
			if bi.MTime != 0 {
				e.MTime = time.Unix(bi.MTime, 0).UTC()
			}
			entries = []models.FileEntry{e}
		} else {
			for _, f := range bi.Files {
				e := models.FileEntry{
					Path:    f.Path,
					Length:  f.Length,
					PadFile: strings.Contains(f.Attr, "p"),
				}
				if f.MTime != 0 {
					e.MTime = time.Unix(f.MTime, 0).UTC()
				}
				entries = append(entries, e)
			}
		}
		tree := models.FileTree{Name: bi.Name, SingleFile: single, Entries: entries}
		if mode.HasV2() {
			if err := attachRoots(&tree, fileTree); err != nil {
				return models.FileTree{}, err
			}
		}
		return tree, nil
	}

	// v2-only: the file tree is the only representation
	var entries []models.FileEntry
	err := walkFileTree(fileTree, nil, func(path []string, leaf internal.Value) error {
		e := models.FileEntry{Path: path}
		if l, ok := leaf.Get("length"); ok {
			e.Length = l.Int
		}
		if mt, ok := leaf.Get("mtime"); ok {
			e.MTime = time.Unix(mt.Int, 0).UTC()
		}
		if root, ok := leaf.Get("pieces root"); ok {
			e.Root = models.Hash{Hash: root.Str}
		} else if e.Length > 0 {
			return fmt.Errorf("%w: file %s has no pieces root", models.ErrInconsistent, strings.Join(path, "/"))
		} else {
			e.Root = models.Hash{Hash: make([]byte, 32)}
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return models.FileTree{}, err
	}
	single := len(entries) == 1 && len(entries[0].Path) == 1 && entries[0].Path[0] == bi.Name
	if single {
		entries[0].Path = nil
	}
	return models.FileTree{Name: bi.Name, SingleFile: single, Entries: entries}, nil
}

// attachRoots copies v2 pieces roots from the file tree onto the entries
// of a hybrid torrent, matched by path.
func attachRoots(tree *models.FileTree, fileTree internal.Value) error {
	roots := map[string][]byte{}
	err := walkFileTree(fileTree, nil, func(path []string, leaf internal.Value) error {
		if root, ok := leaf.Get("pieces root"); ok {
			roots[strings.Join(path, "/")] = root.Str
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.PadFile {
			continue
		}
		key := strings.Join(e.Path, "/")
		if tree.SingleFile {
			key = tree.Name
		}
		if root, ok := roots[key]; ok {
			e.Root = models.Hash{Hash: root}
		} else if e.Length > 0 {
			return fmt.Errorf("%w: no pieces root for %s", models.ErrInconsistent, e.DisplayPath(tree.Name))
		} else {
			e.Root = models.Hash{Hash: make([]byte, 32)}
		}
	}
	return nil
}

// walkFileTree visits every leaf of a v2 file tree in stored key order.
// A leaf is a dictionary holding the "" key.
func walkFileTree(v internal.Value, prefix []string, fn func(path []string, leaf internal.Value) error) error {
	if v.Kind != internal.KindDict {
		return fmt.Errorf("%w: file tree node is not a dictionary", models.ErrInconsistent)
	}
	if leaf, ok := v.Get(""); ok {
		if len(prefix) == 0 {
			return fmt.Errorf("%w: file tree leaf at root", models.ErrInconsistent)
		}
		return fn(append([]string(nil), prefix...), leaf)
	}
	for _, key := range v.Keys() {
		child, _ := v.Get(key)
		next := append(append([]string(nil), prefix...), key)
		if err := walkFileTree(child, next, fn); err != nil {
			return err
		}
	}
	return nil
}

// attachPieceLayers resolves each file's piece layer by its root and
// checks the layer length against the declared file size.
func attachPieceLayers(tree *models.FileTree, layers map[string]string, pieceLength int64) error {
	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.PadFile || e.Length <= pieceLength {
			continue
		}
		layer, ok := layers[e.Root.String()]
		if !ok {
			return fmt.Errorf("%w: no piece layer for %s", models.ErrInconsistent, e.DisplayPath(tree.Name))
		}
		wantPieces := (e.Length + pieceLength - 1) / pieceLength
		if int64(len(layer)) != wantPieces*32 {
			return fmt.Errorf("%w: piece layer of %s has %d bytes, want %d",
				models.ErrInconsistent, e.DisplayPath(tree.Name), len(layer), wantPieces*32)
		}
		for off := 0; off < len(layer); off += 32 {
			e.Layer = append(e.Layer, models.Hash{Hash: []byte(layer[off : off+32])})
		}
	}
	return nil
}

func splitPieces(pieces string, totalLength, pieceLength int64) ([]models.Hash, error) {
	if len(pieces)%20 != 0 {
		return nil, fmt.Errorf("%w: pieces length %d is not a multiple of 20", models.ErrInconsistent, len(pieces))
	}
	want := int64(0)
	if totalLength > 0 {
		want = (totalLength + pieceLength - 1) / pieceLength
	}
	if int64(len(pieces)/20) != want {
		return nil, fmt.Errorf("%w: %d piece hashes for %d pieces", models.ErrInconsistent, len(pieces)/20, want)
	}
	out := make([]models.Hash, 0, len(pieces)/20)
	for off := 0; off < len(pieces); off += 20 {
		out = append(out, models.Hash{Hash: []byte(pieces[off : off+20])})
	}
	return out, nil
}

func announceTiers(bt bencodeTorrent) [][]string {
	if len(bt.AnnounceList) > 0 {
		return bt.AnnounceList
	}
	if bt.Announce != "" {
		return [][]string{{bt.Announce}}
	}
	return nil
}

// parseURLList accepts both the single-string and list forms of
// "url-list" found in the wild.
func parseURLList(raw bencode.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	v, err := internal.Decode(raw)
	if err != nil {
		return nil
	}
	switch v.Kind {
	case internal.KindString:
		return []string{string(v.Str)}
	case internal.KindList:
		var out []string
		for _, item := range v.List {
			if item.Kind == internal.KindString {
				out = append(out, string(item.Str))
			}
		}
		return out
	default:
		return nil
	}
}

func parseNodes(raws []bencode.RawMessage) []models.Node {
	var out []models.Node
	for _, raw := range raws {
		v, err := internal.Decode(raw)
		if err != nil || v.Kind != internal.KindList || len(v.List) < 2 {
			continue
		}
		host, port := v.List[0], v.List[1]
		if host.Kind != internal.KindString || port.Kind != internal.KindInteger {
			continue
		}
		out = append(out, models.Node{Host: string(host.Str), Port: int(port.Int)})
	}
	return out
}
