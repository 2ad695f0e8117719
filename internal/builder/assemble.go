package builder

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/arvidn/torrent-tools/internal/bencode"
	"github.com/arvidn/torrent-tools/internal/shared/models"
)

// Assemble produces the canonical bencoding of the whole metainfo plus
// the canonical bytes of the info sub-dictionary on their own. It is a
// pure function of its input: identical metainfo always yields identical
// bytes, which is what makes the info-hash reproducible.
func Assemble(m models.Metainfo) (data []byte, infoBytes []byte, err error) {
	infoVal, err := buildInfoDict(m.Info)
	if err != nil {
		return nil, nil, err
	}
	infoBytes, err = bencode.Encode(infoVal)
	if err != nil {
		return nil, nil, err
	}

	top := bencode.NewDict()
	if len(m.AnnounceList) > 0 && len(m.AnnounceList[0]) > 0 {
		top.Set("announce", bencode.String(m.AnnounceList[0][0]))
		tiers := bencode.NewList()
		for _, tier := range m.AnnounceList {
			t := bencode.NewList()
			for _, u := range tier {
				t.List = append(t.List, bencode.String(u))
			}
			tiers.List = append(tiers.List, t)
		}
		top.Set("announce-list", tiers)
	}
	if m.Comment != "" {
		top.Set("comment", bencode.String(m.Comment))
	}
	if m.CreatedBy != "" {
		top.Set("created by", bencode.String(m.CreatedBy))
	}
	if !m.CreationDate.IsZero() {
		top.Set("creation date", bencode.Integer(m.CreationDate.Unix()))
	}
	if len(m.Nodes) > 0 {
		nodes := bencode.NewList()
		for _, n := range m.Nodes {
			nodes.List = append(nodes.List, bencode.NewList(
				bencode.String(n.Host), bencode.Integer(int64(n.Port))))
		}
		top.Set("nodes", nodes)
	}
	if len(m.WebSeeds) > 0 {
		seeds := bencode.NewList()
		for _, u := range m.WebSeeds {
			seeds.List = append(seeds.List, bencode.String(u))
		}
		top.Set("url-list", seeds)
	}
	if m.Info.Mode.HasV2() {
		layers := bencode.NewDict()
		for _, f := range m.Info.Files.Entries {
			if len(f.Layer) == 0 {
				continue
			}
			var concat []byte
			for _, h := range f.Layer {
				concat = append(concat, h.Hash...)
			}
			layers.Set(f.Root.String(), bencode.Bytes(concat))
		}
		top.Set("piece layers", layers)
	}
	top.Set("info", infoVal)

	data, err = bencode.Encode(top)
	if err != nil {
		return nil, nil, err
	}
	return data, infoBytes, nil
}

// InfoHashes digests the canonical info bytes, SHA-1 for v1 and SHA-256
// for v2, according to the mode.
func InfoHashes(infoBytes []byte, mode models.InfoMode) (v1, v2 models.Hash) {
	if mode.HasV1() {
		sum := sha1.Sum(infoBytes)
		v1 = models.Hash{Hash: sum[:]}
	}
	if mode.HasV2() {
		sum := sha256.Sum256(infoBytes)
		v2 = models.Hash{Hash: sum[:]}
	}
	return v1, v2
}

func buildInfoDict(info models.Info) (bencode.Value, error) {
	d := bencode.NewDict()
	d.Set("name", bencode.String(info.Files.Name))
	d.Set("piece length", bencode.Integer(info.PieceLength))
	if info.Private {
		d.Set("private", bencode.Integer(1))
	}

	if info.Mode.HasV1() {
		if len(info.Pieces) == 0 && info.Files.TotalLength() > 0 {
			return bencode.Value{}, fmt.Errorf("v1 piece hashes missing")
		}
		var pieces []byte
		for _, h := range info.Pieces {
			pieces = append(pieces, h.Hash...)
		}
		d.Set("pieces", bencode.Bytes(pieces))

		if info.Files.SingleFile {
			f := info.Files.Entries[0]
			d.Set("length", bencode.Integer(f.Length))
			if !f.MTime.IsZero() {
				d.Set("mtime", bencode.Integer(f.MTime.Unix()))
			}
		} else {
			files := bencode.NewList()
			for _, f := range info.Files.Entries {
				fd := bencode.NewDict()
				if f.PadFile {
					fd.Set("attr", bencode.String("p"))
				}
				fd.Set("length", bencode.Integer(f.Length))
				if !f.MTime.IsZero() && !f.PadFile {
					fd.Set("mtime", bencode.Integer(f.MTime.Unix()))
				}
				path := bencode.NewList()
				for _, seg := range f.Path {
					path.List = append(path.List, bencode.String(seg))
				}
				fd.Set("path", path)
				files.List = append(files.List, fd)
			}
			d.Set("files", files)
		}
	}

	if info.Mode.HasV2() {
		d.Set("meta version", bencode.Integer(2))
		ft, err := buildFileTree(info)
		if err != nil {
			return bencode.Value{}, err
		}
		d.Set("file tree", ft)
	}
	return d, nil
}

// treeNode is the intermediate shape of the v2 file tree; the bencode
// encoder sorts the keys when serializing.
type treeNode struct {
	children map[string]*treeNode
	file     *models.FileEntry
}

func buildFileTree(info models.Info) (bencode.Value, error) {
	root := &treeNode{children: map[string]*treeNode{}}
	for i := range info.Files.Entries {
		f := &info.Files.Entries[i]
		if f.PadFile {
			continue
		}
		path := f.Path
		if info.Files.SingleFile {
			path = []string{info.Files.Name}
		}
		node := root
		for _, seg := range path[:len(path)-1] {
			child, ok := node.children[seg]
			if !ok {
				child = &treeNode{children: map[string]*treeNode{}}
				node.children[seg] = child
			}
			if child.file != nil {
				return bencode.Value{}, fmt.Errorf("file clashes with directory %q", seg)
			}
			node = child
		}
		leafName := path[len(path)-1]
		if _, ok := node.children[leafName]; ok {
			return bencode.Value{}, fmt.Errorf("duplicate path %q", f.DisplayPath(info.Files.Name))
		}
		node.children[leafName] = &treeNode{file: f}
	}
	return fileTreeValue(root, info.Mode), nil
}

func fileTreeValue(node *treeNode, mode models.InfoMode) bencode.Value {
	d := bencode.NewDict()
	for name, child := range node.children {
		if child.file != nil {
			leaf := bencode.NewDict()
			leaf.Set("length", bencode.Integer(child.file.Length))
			if !child.file.MTime.IsZero() && mode == models.ModeV2Only {
				leaf.Set("mtime", bencode.Integer(child.file.MTime.Unix()))
			}
			if child.file.Length > 0 {
				leaf.Set("pieces root", bencode.Bytes(child.file.Root.Hash))
			}
			wrap := bencode.NewDict()
			wrap.Set("", leaf)
			d.Set(name, wrap)
		} else {
			d.Set(name, fileTreeValue(child, mode))
		}
	}
	return d
}
