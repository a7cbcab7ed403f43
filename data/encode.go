// Copyright 2023 Tern Data, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical binary encoding of values: one tag byte
// (the Kind) followed by a kind-specific payload.
// The encoding is canonical with respect to Equal:
// two values compare Equal iff their encodings are
// byte-identical. In particular a Float that denotes
// an exact integer is encoded as an Int, and a
// Decimal is reduced before encoding, so the hash
// index over encoded keys agrees with Equal.
// The one exception is NaN, which is never Equal to
// anything (including itself) yet encodes to fixed
// bytes per bit pattern; a NaN map key is therefore
// unreachable through Equal but still findable by
// encoded-byte lookup.

// ErrTruncated is returned by Decode when the input
// ends in the middle of a value.
var ErrTruncated = errors.New("data: truncated value")

// Buffer accumulates encoded values.
// The zero Buffer is ready to use.
type Buffer struct {
	buf []byte
}

// Bytes returns the encoded contents of b.
// The returned slice aliases b's storage and is
// only valid until the next write or Reset.
func (b *Buffer) Bytes() []byte { return b.buf }

// Size returns the number of encoded bytes in b.
func (b *Buffer) Size() int { return len(b.buf) }

// Reset truncates b to zero length,
// keeping its storage for re-use.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// WriteValue appends the canonical encoding of v.
// A nil v encodes as Null.
func (b *Buffer) WriteValue(v Value) {
	if v == nil {
		v = Null{}
	}
	v.encode(b)
}

func (b *Buffer) putTag(k Kind) {
	b.buf = append(b.buf, byte(k))
}

func (b *Buffer) putUvarint(u uint64) {
	b.buf = binary.AppendUvarint(b.buf, u)
}

func (b *Buffer) putVarint(i int64) {
	b.buf = binary.AppendVarint(b.buf, i)
}

func (b *Buffer) putBytes(s []byte) {
	b.putUvarint(uint64(len(s)))
	b.buf = append(b.buf, s...)
}

// Encode returns the canonical encoding of v.
func Encode(v Value) []byte {
	var b Buffer
	b.WriteValue(v)
	return b.Bytes()
}

func (n Null) encode(b *Buffer) { b.putTag(KindNull) }

func (bo Bool) encode(b *Buffer) {
	b.putTag(KindBool)
	if bo {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

func (i Int) encode(b *Buffer) {
	b.putTag(KindInt)
	b.putVarint(int64(i))
}

// integral reports whether f denotes an
// exactly-representable int64.
func integral(f float64) (int64, bool) {
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return 0, false
	}
	i := int64(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

func (f Float) encode(b *Buffer) {
	if i, ok := integral(float64(f)); ok {
		Int(i).encode(b)
		return
	}
	b.putTag(KindFloat)
	b.buf = binary.BigEndian.AppendUint64(b.buf, math.Float64bits(float64(f)))
}

func (s String) encode(b *Buffer) {
	b.putTag(KindString)
	b.putBytes([]byte(s))
}

func (t Timestamp) encode(b *Buffer) {
	b.putTag(KindTimestamp)
	b.putVarint(time.Time(t).UnixNano())
}

// reduce strips trailing decimal zeros from d so
// that numerically-equal decimals share one
// representation (1.0 and 1.00 both reduce to
// coefficient 1, exponent 0).
func (d Decimal) reduce() (*big.Int, int32) {
	co := new(big.Int).Set(d.Num.Coefficient())
	exp := d.Num.Exponent()
	if co.Sign() == 0 {
		return co, 0
	}
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(co, ten, r)
		if r.Sign() != 0 {
			return co, exp
		}
		co.Set(q)
		exp++
	}
}

func (d Decimal) encode(b *Buffer) {
	co, exp := d.reduce()
	b.putTag(KindDecimal)
	b.putVarint(int64(exp))
	if co.Sign() < 0 {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
	b.putBytes(co.Bytes())
}

func (l *List) encode(b *Buffer) {
	b.putTag(KindList)
	b.putUvarint(uint64(len(l.Items)))
	for i := range l.Items {
		b.WriteValue(l.Items[i])
	}
}

func (m *Map) encode(b *Buffer) {
	b.putTag(KindMap)
	b.putUvarint(uint64(len(m.pairs)))
	// pairs are already in canonical order
	for i := range m.pairs {
		b.WriteValue(m.pairs[i].Key)
		b.WriteValue(m.pairs[i].Value)
	}
}

func (r *Record) encode(b *Buffer) {
	b.putTag(KindRecord)
	b.putUvarint(uint64(len(r.Cols)))
	for i := range r.Cols {
		b.WriteValue(r.Cols[i])
	}
}

// Decode reads one value from the front of buf and
// returns it along with the remaining bytes.
// Decode(Encode(v)) yields a value Equal to v,
// though not necessarily of the same Kind (an
// integral Float decodes as an Int).
func Decode(buf []byte) (Value, []byte, error) {
	if len(buf) == 0 {
		return nil, buf, ErrTruncated
	}
	tag, rest := Kind(buf[0]), buf[1:]
	switch tag {
	case KindNull:
		return Null{}, rest, nil
	case KindBool:
		if len(rest) < 1 {
			return nil, buf, ErrTruncated
		}
		return Bool(rest[0] != 0), rest[1:], nil
	case KindInt:
		i, n := binary.Varint(rest)
		if n <= 0 {
			return nil, buf, ErrTruncated
		}
		return Int(i), rest[n:], nil
	case KindFloat:
		if len(rest) < 8 {
			return nil, buf, ErrTruncated
		}
		f := math.Float64frombits(binary.BigEndian.Uint64(rest))
		return Float(f), rest[8:], nil
	case KindString:
		s, rest, err := readBytes(rest)
		if err != nil {
			return nil, buf, err
		}
		return String(s), rest, nil
	case KindTimestamp:
		ns, n := binary.Varint(rest)
		if n <= 0 {
			return nil, buf, ErrTruncated
		}
		return Timestamp(time.Unix(0, ns).UTC()), rest[n:], nil
	case KindDecimal:
		exp, n := binary.Varint(rest)
		if n <= 0 || len(rest) < n+1 {
			return nil, buf, ErrTruncated
		}
		neg := rest[n] != 0
		raw, rest, err := readBytes(rest[n+1:])
		if err != nil {
			return nil, buf, err
		}
		co := new(big.Int).SetBytes(raw)
		if neg {
			co.Neg(co)
		}
		return Decimal{Num: decimal.NewFromBigInt(co, int32(exp))}, rest, nil
	case KindList:
		vals, rest, err := readSeq(rest)
		if err != nil {
			return nil, buf, err
		}
		return &List{Items: vals}, rest, nil
	case KindMap:
		count, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, buf, ErrTruncated
		}
		rest = rest[n:]
		// every entry is at least two bytes; an absurd
		// count is a truncation, not an allocation size
		if count > uint64(len(rest)) {
			return nil, buf, ErrTruncated
		}
		pairs := make([]Pair, 0, count)
		for j := uint64(0); j < count; j++ {
			var k, v Value
			var err error
			k, rest, err = Decode(rest)
			if err != nil {
				return nil, buf, err
			}
			v, rest, err = Decode(rest)
			if err != nil {
				return nil, buf, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return NewMap(pairs...), rest, nil
	case KindRecord:
		vals, rest, err := readSeq(rest)
		if err != nil {
			return nil, buf, err
		}
		return &Record{Cols: vals}, rest, nil
	default:
		return nil, buf, fmt.Errorf("data: bad value tag %d", tag)
	}
}

func readBytes(buf []byte) ([]byte, []byte, error) {
	size, n := binary.Uvarint(buf)
	if n <= 0 || uint64(len(buf)-n) < size {
		return nil, buf, ErrTruncated
	}
	return buf[n : n+int(size)], buf[n+int(size):], nil
}

func readSeq(buf []byte) ([]Value, []byte, error) {
	count, n := binary.Uvarint(buf)
	if n <= 0 {
		return nil, buf, ErrTruncated
	}
	rest := buf[n:]
	// every element is at least one byte; bound the
	// claimed count by the input that is actually there
	if count > uint64(len(rest)) {
		return nil, rest, ErrTruncated
	}
	vals := make([]Value, 0, count)
	for j := uint64(0); j < count; j++ {
		var v Value
		var err error
		v, rest, err = Decode(rest)
		if err != nil {
			return nil, rest, err
		}
		vals = append(vals, v)
	}
	return vals, rest, nil
}
