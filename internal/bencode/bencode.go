// Package bencode implements the bencode wire format used by metainfo
// files. The encoder always emits the canonical form (dictionary keys in
// ascending byte order, minimal integers) so that encoding the same value
// twice produces identical bytes, which is what makes info-hashes
// reproducible. The decoder has a lenient mode for reading third-party
// files and a strict mode that additionally rejects any non-canonical
// construct.
package bencode

import "errors"

// ErrMalformedEncoding is wrapped by every decode failure.
var ErrMalformedEncoding = errors.New("malformed bencode")

type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindList
	KindDict
)

// Value is one bencoded item. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind    Kind
	Str     []byte
	Int     int64
	List    []Value
	entries []dictEntry
}

type dictEntry struct {
	key   string
	value Value
}

func String(s string) Value {
	return Value{Kind: KindString, Str: []byte(s)}
}

func Bytes(b []byte) Value {
	return Value{Kind: KindString, Str: b}
}

func Integer(i int64) Value {
	return Value{Kind: KindInteger, Int: i}
}

func NewList(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

func NewDict() Value {
	return Value{Kind: KindDict}
}

// Set adds or replaces a dictionary key. Insertion order is preserved for
// iteration; encoding sorts keys regardless.
func (v *Value) Set(key string, val Value) {
	for i := range v.entries {
		if v.entries[i].key == key {
			v.entries[i].value = val
			return
		}
	}
	v.entries = append(v.entries, dictEntry{key: key, value: val})
}

func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

func (v Value) Len() int {
	if v.Kind == KindList {
		return len(v.List)
	}
	return len(v.entries)
}

// Keys returns the dictionary keys in insertion order, which for decoded
// values is the order they appeared on the wire.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		keys = append(keys, e.key)
	}
	return keys
}
