package bencode

import (
	"fmt"
	"sort"
	"strconv"
)

// Encode serializes a value in canonical form. Dictionary keys are emitted
// in ascending byte-lexicographic order no matter what order they were set
// in, so the output is a pure function of the value.
func Encode(v Value) ([]byte, error) {
	var out []byte
	return appendValue(out, v)
}

func appendValue(out []byte, v Value) ([]byte, error) {
	switch v.Kind {
	case KindString:
		out = strconv.AppendInt(out, int64(len(v.Str)), 10)
		out = append(out, ':')
		out = append(out, v.Str...)
		return out, nil
	case KindInteger:
		out = append(out, 'i')
		out = strconv.AppendInt(out, v.Int, 10)
		out = append(out, 'e')
		return out, nil
	case KindList:
		out = append(out, 'l')
		for _, item := range v.List {
			var err error
			out, err = appendValue(out, item)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, 'e')
		return out, nil
	case KindDict:
		keys := v.Keys()
		sort.Strings(keys)
		for i := 1; i < len(keys); i++ {
			if keys[i] == keys[i-1] {
				return nil, fmt.Errorf("duplicate dictionary key %q", keys[i])
			}
		}
		out = append(out, 'd')
		for _, key := range keys {
			out = strconv.AppendInt(out, int64(len(key)), 10)
			out = append(out, ':')
			out = append(out, key...)
			val, _ := v.Get(key)
			var err error
			out, err = appendValue(out, val)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, 'e')
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}
