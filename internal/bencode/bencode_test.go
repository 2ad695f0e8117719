package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	var tests = []struct {
		name   string
		assert func(t *testing.T, actual []byte, err error)
		given  func() Value
	}{
		{
			name: "string",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("4:spam"), actual)
			},
			given: func() Value { return String("spam") },
		},
		{
			name: "empty string",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("0:"), actual)
			},
			given: func() Value { return String("") },
		},
		{
			name: "negative integer",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("i-42e"), actual)
			},
			given: func() Value { return Integer(-42) },
		},
		{
			name: "list",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("l4:spami3ee"), actual)
			},
			given: func() Value { return NewList(String("spam"), Integer(3)) },
		},
		{
			name: "dictionary keys are sorted regardless of insertion order",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("d1:ai1e1:bi2e1:ci3ee"), actual)
			},
			given: func() Value {
				d := NewDict()
				d.Set("c", Integer(3))
				d.Set("a", Integer(1))
				d.Set("b", Integer(2))
				return d
			},
		},
		{
			name: "nested dictionary",
			assert: func(t *testing.T, actual []byte, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("d4:infod4:name1:xee"), actual)
			},
			given: func() Value {
				inner := NewDict()
				inner.Set("name", String("x"))
				d := NewDict()
				d.Set("info", inner)
				return d
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Encode(tt.given())
			tt.assert(t, actual, err)
		})
	}
}

func TestEncodeDeterminism(t *testing.T) {
	d := NewDict()
	d.Set("pieces", String("aaaaaaaaaaaaaaaaaaaa"))
	d.Set("name", String("x"))
	d.Set("piece length", Integer(16384))

	first, err := Encode(d)
	assert.Nil(t, err)
	second, err := Encode(d)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
}

func TestDecode(t *testing.T) {
	var tests = []struct {
		name   string
		strict bool
		assert func(t *testing.T, actual Value, err error)
		given  string
	}{
		{
			name: "integer",
			assert: func(t *testing.T, actual Value, err error) {
				assert.Nil(t, err)
				assert.Equal(t, KindInteger, actual.Kind)
				assert.Equal(t, int64(42), actual.Int)
			},
			given: "i42e",
		},
		{
			name: "string",
			assert: func(t *testing.T, actual Value, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []byte("spam"), actual.Str)
			},
			given: "4:spam",
		},
		{
			name: "dictionary preserves wire order",
			assert: func(t *testing.T, actual Value, err error) {
				assert.Nil(t, err)
				assert.Equal(t, []string{"b", "a"}, actual.Keys())
			},
			given: "d1:bi2e1:ai1ee",
		},
		{
			name: "truncated input",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "d4:spam",
		},
		{
			name: "unterminated integer",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "i42",
		},
		{
			name: "string length exceeding input",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "10:abc",
		},
		{
			name: "length prefix with leading zero rejected even when lenient",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "04:spam",
		},
		{
			name: "duplicate dictionary keys reported",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
				assert.Contains(t, err.Error(), "duplicate")
			},
			given: "d1:ai1e1:ai2ee",
		},
		{
			name: "trailing bytes",
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "i1ei2e",
		},
		{
			name: "lenient accepts unsorted keys",
			assert: func(t *testing.T, actual Value, err error) {
				assert.Nil(t, err)
			},
			given: "d1:bi2e1:ai1ee",
		},
		{
			name:   "strict rejects unsorted keys",
			strict: true,
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
				assert.Contains(t, err.Error(), "out of order")
			},
			given: "d1:bi2e1:ai1ee",
		},
		{
			name: "lenient accepts integer with leading zero",
			assert: func(t *testing.T, actual Value, err error) {
				assert.Nil(t, err)
				assert.Equal(t, int64(7), actual.Int)
			},
			given: "i07e",
		},
		{
			name:   "strict rejects integer with leading zero",
			strict: true,
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "i07e",
		},
		{
			name:   "strict rejects leading plus",
			strict: true,
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "i+1e",
		},
		{
			name:   "strict rejects negative zero",
			strict: true,
			assert: func(t *testing.T, actual Value, err error) {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
			},
			given: "i-0e",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var actual Value
			var err error
			if tt.strict {
				actual, err = DecodeStrict([]byte(tt.given))
			} else {
				actual, err = Decode([]byte(tt.given))
			}
			tt.assert(t, actual, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inner := NewDict()
	inner.Set("length", Integer(90000))
	inner.Set("name", String("Torrent_Folder"))
	d := NewDict()
	d.Set("announce", String("http://tracker.example.com"))
	d.Set("info", inner)

	encoded, err := Encode(d)
	assert.Nil(t, err)

	decoded, err := DecodeStrict(encoded)
	assert.Nil(t, err)
	reencoded, err := Encode(decoded)
	assert.Nil(t, err)
	assert.Equal(t, encoded, reencoded)
}
