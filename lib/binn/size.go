// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

// Size returns the number of bytes Encode would write for v. It fails
// wherever Encode would fail before writing, with the same code and
// path.
func Size(v Value) (uint64, error) {
	switch v.kind {
	case KindNull:
		return 1, nil
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		if err := checkWireLength("size "+v.kind.String(), len(v.str), "bytes", "length"); err != nil {
			return 0, err
		}
		return 5 + uint64(len(v.str)), nil
	case KindBlob:
		if err := checkWireLength("size blob", len(v.blob), "bytes", "length"); err != nil {
			return 0, err
		}
		return 5 + uint64(len(v.blob)), nil
	case KindList:
		if err := checkWireLength("size list", len(v.list), "elements", "count"); err != nil {
			return 0, err
		}
		total := uint64(5)
		for index, element := range v.list {
			size, err := Size(element)
			if err != nil {
				return 0, atPath(err, indexSegment(index))
			}
			total += size
		}
		return total, nil
	case KindMap:
		if err := checkWireLength("size map", len(v.m), "entries", "count"); err != nil {
			return 0, err
		}
		total := uint64(5)
		for _, key := range v.m.Keys() {
			size, err := Size(v.m[key])
			if err != nil {
				return 0, atPath(err, mapKeySegment(key))
			}
			total += 4 + size
		}
		return total, nil
	case KindObject:
		if err := checkWireLength("size object", v.obj.Len(), "members", "count"); err != nil {
			return 0, err
		}
		total := uint64(5)
		for key, element := range v.obj.All() {
			if err := checkWireLength("size object key", len(key), "bytes", "length"); err != nil {
				return 0, atPath(err, keySegment(key))
			}
			size, err := Size(element)
			if err != nil {
				return 0, atPath(err, keySegment(key))
			}
			total += 4 + uint64(len(key)) + size
		}
		return total, nil
	}
	if width := v.kind.fixedWidth(); width >= 0 {
		return 1 + uint64(width), nil
	}
	return 0, newError(CodeMalformedTag, "size", "value has unknown kind %d", uint8(v.kind))
}

// checkWireLength fails with CodeLengthOverflow when n does not fit a
// 32-bit length or count prefix.
func checkWireLength(op string, n int, unit, prefix string) error {
	if uint64(n) > maxWireLength {
		return newError(CodeLengthOverflow, op, "%d %s exceeds 32-bit %s prefix", n, unit, prefix)
	}
	return nil
}
