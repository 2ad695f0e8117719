package models

import (
	"encoding/hex"
	"time"
)

const (
	// MinPieceLength is the smallest piece length the format permits,
	// and also the fixed v2 merkle block size.
	MinPieceLength = 16384
	BlockSize      = 16384
)

// Hash is a raw digest, 20 bytes for SHA-1 and 32 for SHA-256.
type Hash struct {
	Hash []byte
}

func (h Hash) String() string {
	return string(h.Hash)
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h.Hash)
}

func (h Hash) IsZero() bool {
	for _, b := range h.Hash {
		if b != 0 {
			return false
		}
	}
	return true
}

// InfoMode says which hash sets an info dictionary carries. The three
// variants carry exactly the fields they need; the assembler and the
// reader both branch on it instead of probing optional fields.
type InfoMode int

const (
	ModeHybrid InfoMode = iota
	ModeV1Only
	ModeV2Only
)

func (m InfoMode) HasV1() bool { return m != ModeV2Only }
func (m InfoMode) HasV2() bool { return m != ModeV1Only }

// Info models the info dictionary. Built once, immutable afterwards.
type Info struct {
	Mode        InfoMode
	Files       FileTree
	PieceLength int64
	Private     bool

	// Pieces is the v1 piece hash list over the concatenated stream,
	// nil in v2-only mode. v2 roots and layers live on the file entries.
	Pieces []Hash
}

// NumPieces is the v1 piece count implied by the stream length.
func (i Info) NumPieces() int {
	total := i.Files.TotalLength()
	if total == 0 {
		return 0
	}
	return int((total + i.PieceLength - 1) / i.PieceLength)
}

// Node is a DHT bootstrap node.
type Node struct {
	Host string
	Port int
}

// Metainfo is a parsed or to-be-written torrent descriptor.
type Metainfo struct {
	Info Info

	// AnnounceList groups tracker URLs into ordered tiers. Tier order
	// and intra-tier order both matter for client fallback.
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate time.Time // zero when absent
	Nodes        []Node
	WebSeeds     []string // BEP19 url-list
	HTTPSeeds    []string // BEP17 httpseeds, passed through when reading

	// InfoHashV1/V2 are computed over the canonical encoding of the
	// info dictionary. The builder fills them when writing; the reader
	// recomputes them from the stored bytes.
	InfoHashV1 Hash
	InfoHashV2 Hash
}

// Trackers flattens the announce tiers into (tier, url) pairs in
// reporting order.
func (m Metainfo) Trackers() []TrackerRef {
	var out []TrackerRef
	for tier, urls := range m.AnnounceList {
		for _, u := range urls {
			out = append(out, TrackerRef{Tier: tier, URL: u})
		}
	}
	return out
}

type TrackerRef struct {
	Tier int
	URL  string
}
