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
	"bytes"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value is one dynamically-typed datum.
//
// A Value should be one of
//
//	Null, Bool, Int, Float, String, Timestamp,
//	Decimal, *List, *Map, *Record
//
// Values are immutable once constructed and have no
// identity beyond structural equality.
type Value interface {
	Kind() Kind
	String() string

	// canonical encoding; see encode.go
	encode(dst *Buffer)
	// structural equality; see Equal
	equal(Value) bool
}

var (
	// all of these types must be values
	_ Value = Null{}
	_ Value = Bool(true)
	_ Value = Int(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = Timestamp{}
	_ Value = Decimal{}
	_ Value = (*List)(nil)
	_ Value = (*Map)(nil)
	_ Value = (*Record)(nil)
)

// Row is an ordered, fixed-arity tuple of values.
// Rows are produced by lower layers (a scan or a
// prior projection) and must not be mutated once
// handed to evaluation.
type Row []Value

// Null is the null value.
type Null struct{}

func (n Null) Kind() Kind     { return KindNull }
func (n Null) String() string { return "null" }

func (n Null) equal(v Value) bool {
	_, ok := v.(Null)
	return ok
}

// IsNull returns whether v is absent, either
// because it is a Null value or because the
// producing slot held nothing at all.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Bool is a boolean value.
type Bool bool

func (b Bool) Kind() Kind { return KindBool }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) equal(v Value) bool {
	b2, ok := v.(Bool)
	return ok && b == b2
}

// Int is a signed 64-bit integer value.
type Int int64

func (i Int) Kind() Kind     { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (i Int) equal(v Value) bool {
	switch v := v.(type) {
	case Int:
		return i == v
	case Float:
		return float64(int64(v)) == float64(v) && int64(v) == int64(i)
	default:
		return false
	}
}

// Float is a 64-bit floating-point value.
type Float float64

func (f Float) Kind() Kind     { return KindFloat }
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (f Float) equal(v Value) bool {
	switch v := v.(type) {
	case Float:
		return f == v
	case Int:
		return float64(int64(f)) == float64(f) && int64(f) == int64(v)
	default:
		return false
	}
}

// String is a string value.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) String() string { return strconv.Quote(string(s)) }

func (s String) equal(v Value) bool {
	s2, ok := v.(String)
	return ok && s == s2
}

// Timestamp is a point-in-time value with
// nanosecond resolution. Two timestamps are
// equal when they denote the same instant,
// regardless of location.
type Timestamp time.Time

func (t Timestamp) Kind() Kind     { return KindTimestamp }
func (t Timestamp) String() string { return time.Time(t).UTC().Format(time.RFC3339Nano) }

func (t Timestamp) equal(v Value) bool {
	t2, ok := v.(Timestamp)
	return ok && time.Time(t).Equal(time.Time(t2))
}

// Decimal is an arbitrary-precision decimal value.
// Equality is numeric: 1.0 and 1.00 are equal.
type Decimal struct {
	Num decimal.Decimal
}

func (d Decimal) Kind() Kind     { return KindDecimal }
func (d Decimal) String() string { return d.Num.String() }

func (d Decimal) equal(v Value) bool {
	d2, ok := v.(Decimal)
	return ok && d.Num.Equal(d2.Num)
}

// List is an ordered sequence value.
type List struct {
	Items []Value
}

// NewList constructs a list value from items.
// The items slice is retained; callers must not
// mutate it afterwards.
func NewList(items ...Value) *List {
	return &List{Items: items}
}

func (l *List) Kind() Kind { return KindList }
func (l *List) Len() int   { return len(l.Items) }

// Index returns the element at ordinal i, or
// (Null, false) when i is out of range.
func (l *List) Index(i int) (Value, bool) {
	if i < 0 || i >= len(l.Items) {
		return Null{}, false
	}
	return l.Items[i], true
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(l.Items[i].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List) equal(v Value) bool {
	l2, ok := v.(*List)
	if !ok || len(l.Items) != len(l2.Items) {
		return false
	}
	for i := range l.Items {
		if !Equal(l.Items[i], l2.Items[i]) {
			return false
		}
	}
	return true
}

// Pair is one key/value entry of a Map.
type Pair struct {
	Key, Value Value
}

// Map is an associative container keyed by
// structural equality. Lookup goes through a
// hash index over the canonical encoding of
// each key, built once at construction.
type Map struct {
	pairs []Pair
	keyed map[uint64][]int
}

// NewMap constructs a map value from pairs.
// Entries are stored in canonical (encoded-key)
// order; when the same key appears more than
// once the last occurrence wins.
func NewMap(pairs ...Pair) *Map {
	enc := make([][]byte, len(pairs))
	for i := range pairs {
		enc[i] = Encode(pairs[i].Key)
	}
	order := make([]int, len(pairs))
	for i := range order {
		order[i] = i
	}
	// stable so that later duplicates shadow earlier ones
	sort.SliceStable(order, func(i, j int) bool {
		return bytes.Compare(enc[order[i]], enc[order[j]]) < 0
	})
	m := &Map{keyed: make(map[uint64][]int, len(pairs))}
	for _, src := range order {
		if n := len(m.pairs); n > 0 && bytes.Equal(enc[src], Encode(m.pairs[n-1].Key)) {
			m.pairs[n-1] = pairs[src]
			continue
		}
		m.pairs = append(m.pairs, pairs[src])
		h := hashBytes(enc[src])
		m.keyed[h] = append(m.keyed[h], len(m.pairs)-1)
	}
	return m
}

func (m *Map) Kind() Kind { return KindMap }
func (m *Map) Len() int   { return len(m.pairs) }

// Get returns the value associated with key,
// or (Null, false) when the key is absent.
func (m *Map) Get(key Value) (Value, bool) {
	enc := Encode(key)
	for _, i := range m.keyed[hashBytes(enc)] {
		if bytes.Equal(enc, Encode(m.pairs[i].Key)) {
			return m.pairs[i].Value, true
		}
	}
	return Null{}, false
}

// Each calls fn for every entry in canonical
// order until fn returns false.
func (m *Map) Each(fn func(Pair) bool) {
	for i := range m.pairs {
		if !fn(m.pairs[i]) {
			return
		}
	}
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := range m.pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.pairs[i].Key.String())
		sb.WriteString(": ")
		sb.WriteString(m.pairs[i].Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (m *Map) equal(v Value) bool {
	m2, ok := v.(*Map)
	if !ok || len(m.pairs) != len(m2.pairs) {
		return false
	}
	// entries are in canonical order on both sides
	for i := range m.pairs {
		if !Equal(m.pairs[i].Key, m2.pairs[i].Key) ||
			!Equal(m.pairs[i].Value, m2.pairs[i].Value) {
			return false
		}
	}
	return true
}

// Record is a structured value whose slots are
// addressed by ordinal. The schema (names, types)
// lives in the corresponding RecordType; the value
// itself carries only the slot contents.
type Record struct {
	Cols Row
}

// NewRecord constructs a record value from cols.
func NewRecord(cols ...Value) *Record {
	return &Record{Cols: cols}
}

func (r *Record) Kind() Kind { return KindRecord }
func (r *Record) Len() int   { return len(r.Cols) }

// Col returns the value in slot i, or
// (Null, false) when i is out of range.
func (r *Record) Col(i int) (Value, bool) {
	if i < 0 || i >= len(r.Cols) {
		return Null{}, false
	}
	return r.Cols[i], true
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range r.Cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.Cols[i].String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (r *Record) equal(v Value) bool {
	r2, ok := v.(*Record)
	if !ok || len(r.Cols) != len(r2.Cols) {
		return false
	}
	for i := range r.Cols {
		if !Equal(r.Cols[i], r2.Cols[i]) {
			return false
		}
	}
	return true
}

// Equal returns whether a and b are structurally
// equal. Int and Float values compare numerically
// when they denote the same number exactly; all
// other comparisons are per-kind. a or b may be nil,
// in which case it compares equal to Null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	return a.equal(b)
}
