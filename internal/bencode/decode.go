package bencode

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decode parses one bencoded value, tolerating the non-canonical
// constructs third-party encoders produce (unsorted dictionary keys,
// integers with leading zeros). Duplicate dictionary keys are always an
// error. Trailing bytes after the value are an error.
func Decode(data []byte) (Value, error) {
	return decode(data, false)
}

// DecodeStrict parses one bencoded value and additionally rejects
// anything the canonical encoder would never produce: out-of-order
// dictionary keys, integers with leading zeros or a leading '+', and
// negative zero. Bytes that feed a hash must pass strict decoding.
func DecodeStrict(data []byte) (Value, error) {
	return decode(data, true)
}

func decode(data []byte, strict bool) (Value, error) {
	d := &decoder{data: data, strict: strict}
	v, err := d.value()
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrMalformedEncoding, err)
	}
	if d.pos != len(d.data) {
		return Value{}, fmt.Errorf("%w: %d trailing bytes after value", ErrMalformedEncoding, len(d.data)-d.pos)
	}
	return v, nil
}

type decoder struct {
	data   []byte
	pos    int
	strict bool
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.data) {
		return Value{}, fmt.Errorf("unexpected end of input at offset %d", d.pos)
	}
	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.integer()
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	case c >= '0' && c <= '9':
		return d.str()
	default:
		return Value{}, fmt.Errorf("invalid type prefix %q at offset %d", c, d.pos)
	}
}

func (d *decoder) integer() (Value, error) {
	d.pos++ // 'i'
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 'e' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return Value{}, fmt.Errorf("unterminated integer at offset %d", start-1)
	}
	digits := d.data[start:d.pos]
	d.pos++ // 'e'
	if len(digits) == 0 {
		return Value{}, fmt.Errorf("empty integer at offset %d", start-1)
	}
	if d.strict {
		if digits[0] == '+' {
			return Value{}, fmt.Errorf("integer with leading '+' at offset %d", start)
		}
		if err := checkCanonicalDigits(digits, start); err != nil {
			return Value{}, err
		}
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid integer %q at offset %d", digits, start)
	}
	return Integer(n), nil
}

// checkCanonicalDigits rejects "-0", "00", "01" and friends.
func checkCanonicalDigits(digits []byte, offset int) error {
	body := digits
	if body[0] == '-' {
		body = body[1:]
		if len(body) == 0 {
			return fmt.Errorf("invalid integer %q at offset %d", digits, offset)
		}
		if body[0] == '0' {
			return fmt.Errorf("non-canonical integer %q at offset %d", digits, offset)
		}
	}
	if len(body) > 1 && body[0] == '0' {
		return fmt.Errorf("non-canonical integer %q at offset %d", digits, offset)
	}
	return nil
}

func (d *decoder) str() (Value, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != ':' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return Value{}, fmt.Errorf("unterminated string length at offset %d", start)
	}
	prefix := d.data[start:d.pos]
	d.pos++ // ':'
	// A leading zero on a non-zero length is never produced by any
	// encoder and usually indicates corruption, so reject it even when
	// lenient.
	if len(prefix) > 1 && prefix[0] == '0' {
		return Value{}, fmt.Errorf("non-canonical string length %q at offset %d", prefix, start)
	}
	n, err := strconv.ParseInt(string(prefix), 10, 64)
	if err != nil || n < 0 {
		return Value{}, fmt.Errorf("invalid string length %q at offset %d", prefix, start)
	}
	if n > int64(len(d.data)-d.pos) {
		return Value{}, fmt.Errorf("string length %d exceeds remaining input at offset %d", n, start)
	}
	s := d.data[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return Bytes(s), nil
}

func (d *decoder) list() (Value, error) {
	d.pos++ // 'l'
	v := Value{Kind: KindList}
	for {
		if d.pos >= len(d.data) {
			return Value{}, fmt.Errorf("unterminated list at offset %d", d.pos)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return v, nil
		}
		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		v.List = append(v.List, item)
	}
}

func (d *decoder) dict() (Value, error) {
	d.pos++ // 'd'
	v := NewDict()
	var prev []byte
	first := true
	for {
		if d.pos >= len(d.data) {
			return Value{}, fmt.Errorf("unterminated dictionary at offset %d", d.pos)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return v, nil
		}
		keyOffset := d.pos
		key, err := d.str()
		if err != nil {
			return Value{}, err
		}
		if _, ok := v.Get(string(key.Str)); ok {
			return Value{}, fmt.Errorf("duplicate dictionary key %q at offset %d", key.Str, keyOffset)
		}
		if !first && d.strict && bytes.Compare(prev, key.Str) > 0 {
			return Value{}, fmt.Errorf("dictionary key %q out of order at offset %d", key.Str, keyOffset)
		}
		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		v.Set(string(key.Str), item)
		prev = key.Str
		first = false
	}
}
