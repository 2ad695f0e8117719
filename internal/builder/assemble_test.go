package builder

import (
	"bytes"
	"testing"
	"time"

	"github.com/arvidn/torrent-tools/internal/shared/models"
	bencode "github.com/jackpal/bencode-go"
	"github.com/stretchr/testify/assert"
)

// crossCheckTorrent decodes the assembled bytes with an independent
// bencode implementation, so a bug shared by our encoder and decoder
// cannot hide.
type crossCheckTorrent struct {
	Announce     string     `bencode:"announce"`
	AnnounceList [][]string `bencode:"announce-list"`
	Comment      string     `bencode:"comment"`
	CreatedBy    string     `bencode:"created by"`
	CreationDate int64      `bencode:"creation date"`
	Info         struct {
		Name        string `bencode:"name"`
		PieceLength int64  `bencode:"piece length"`
		Pieces      string `bencode:"pieces"`
		Length      int64  `bencode:"length"`
		Private     int64  `bencode:"private"`
	} `bencode:"info"`
}

func singleFileMetainfo() models.Metainfo {
	piece := bytes.Repeat([]byte{0xab}, 20)
	return models.Metainfo{
		Info: models.Info{
			Mode:        models.ModeV1Only,
			Files:       models.NewFileTree("sample.bin", true, []models.FileEntry{{Length: 9000}}),
			PieceLength: 16384,
			Private:     true,
			Pieces:      []models.Hash{{Hash: piece}},
		},
		AnnounceList: [][]string{{"https://tracker.test/announce"}},
		Comment:      "foobar",
		CreatedBy:    "torrent-tools",
		CreationDate: time.Unix(1609620000, 0),
	}
}

func TestAssembleCrossCheck(t *testing.T) {
	data, infoBytes, err := Assemble(singleFileMetainfo())
	assert.Nil(t, err)
	assert.NotEmpty(t, infoBytes)

	var check crossCheckTorrent
	err = bencode.Unmarshal(bytes.NewReader(data), &check)
	assert.Nil(t, err)
	assert.Equal(t, "https://tracker.test/announce", check.Announce)
	assert.Equal(t, [][]string{{"https://tracker.test/announce"}}, check.AnnounceList)
	assert.Equal(t, "foobar", check.Comment)
	assert.Equal(t, "torrent-tools", check.CreatedBy)
	assert.Equal(t, int64(1609620000), check.CreationDate)
	assert.Equal(t, "sample.bin", check.Info.Name)
	assert.Equal(t, int64(16384), check.Info.PieceLength)
	assert.Equal(t, int64(9000), check.Info.Length)
	assert.Equal(t, int64(1), check.Info.Private)
	assert.Len(t, check.Info.Pieces, 20)
}

func TestAssembleDeterminism(t *testing.T) {
	m := singleFileMetainfo()
	first, firstInfo, err := Assemble(m)
	assert.Nil(t, err)
	second, secondInfo, err := Assemble(m)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstInfo, secondInfo)

	v1a, _ := InfoHashes(firstInfo, m.Info.Mode)
	v1b, _ := InfoHashes(secondInfo, m.Info.Mode)
	assert.Equal(t, v1a, v1b)
	assert.Len(t, v1a.Hash, 20)
}

func TestInfoHashesByMode(t *testing.T) {
	infoBytes := []byte("d4:name1:x12:piece lengthi16384ee")

	v1, v2 := InfoHashes(infoBytes, models.ModeHybrid)
	assert.Len(t, v1.Hash, 20)
	assert.Len(t, v2.Hash, 32)

	v1, v2 = InfoHashes(infoBytes, models.ModeV2Only)
	assert.Empty(t, v1.Hash)
	assert.Len(t, v2.Hash, 32)

	v1, v2 = InfoHashes(infoBytes, models.ModeV1Only)
	assert.Len(t, v1.Hash, 20)
	assert.Empty(t, v2.Hash)
}

func TestWebSeedURLs(t *testing.T) {
	var tests = []struct {
		name     string
		urls     []string
		single   bool
		expected []string
	}{
		{
			name:     "multi-file seeds get a trailing slash",
			urls:     []string{"https://web.com/torrent"},
			single:   false,
			expected: []string{"https://web.com/torrent/"},
		},
		{
			name:     "existing slash is kept as is",
			urls:     []string{"https://web.com/torrent/"},
			single:   false,
			expected: []string{"https://web.com/torrent/"},
		},
		{
			name:     "single-file seeds are stored untouched",
			urls:     []string{"https://web.com/file"},
			single:   true,
			expected: []string{"https://web.com/file"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, webSeedURLs(tt.urls, tt.single))
		})
	}
}
