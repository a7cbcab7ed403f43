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

package expr

import (
	"fmt"
	"strings"

	"github.com/terndb/tern/data"
)

// FieldAccessError is returned by Select when no
// field access can be built on the child: its
// static type is neither a record nor a list of
// records.
type FieldAccessError struct {
	At   Node
	Type data.Type
	Msg  string
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("%q: %s", ToString(e.At), e.Msg)
}

// Index selects one element out of a list- or
// map-typed container: a list is indexed by
// integer ordinal, a map by structural key
// equality. An out-of-range ordinal or an absent
// key evaluates to null, never an error.
type Index struct {
	Container Node
	Key       Node
}

// NewIndex constructs an element access on
// container by key. A container whose static type
// is neither a list nor a map yields an unresolved
// node rather than a construction error.
func NewIndex(container, key Node) *Index {
	return &Index{Container: container, Key: key}
}

func (i *Index) Type() data.Type {
	switch t := i.Container.Type().(type) {
	case *data.ListType:
		return t.Elem
	case *data.MapType:
		return t.Value
	}
	panic(fmt.Sprintf("Index.Type: container %q is not a list or map", ToString(i.Container)))
}

// Nullable is always true: a miss is a first-class
// null outcome.
func (i *Index) Nullable() bool { return true }

func (i *Index) Foldable() bool {
	return i.Container.Foldable() && i.Key.Foldable()
}

func (i *Index) Resolved() bool {
	if !i.Container.Resolved() || !i.Key.Resolved() {
		return false
	}
	switch i.Container.Type().(type) {
	case *data.ListType, *data.MapType:
		return true
	}
	return false
}

// ordinalKey extracts an integer ordinal from a
// dynamically-typed key value.
func ordinalKey(v data.Value) (int64, bool) {
	switch v := v.(type) {
	case data.Int:
		return int64(v), true
	case data.Float:
		if float64(int64(v)) == float64(v) {
			return int64(v), true
		}
	}
	return 0, false
}

func (i *Index) Eval(row data.Row) data.Value {
	c := i.Container.Eval(row)
	if data.IsNull(c) {
		return data.Null{}
	}
	k := i.Key.Eval(row)
	if data.IsNull(k) {
		return data.Null{}
	}
	switch c := c.(type) {
	case *data.List:
		ord, ok := ordinalKey(k)
		if !ok {
			return data.Null{}
		}
		v, _ := c.Index(int(ord))
		if v == nil {
			return data.Null{}
		}
		return v
	case *data.Map:
		v, _ := c.Get(k)
		if v == nil {
			return data.Null{}
		}
		return v
	}
	return data.Null{}
}

func (i *Index) Equals(n Node) bool {
	i2, ok := n.(*Index)
	return ok && i.Container.Equals(i2.Container) && i.Key.Equals(i2.Key)
}

func (i *Index) text(dst *strings.Builder) {
	i.Container.text(dst)
	dst.WriteByte('[')
	i.Key.text(dst)
	dst.WriteByte(']')
}

func (i *Index) walk(v Visitor) {
	Walk(v, i.Container)
	Walk(v, i.Key)
}

func (i *Index) rewrite(r Rewriter) Node {
	c := *i
	c.Container = Rewrite(r, i.Container)
	c.Key = Rewrite(r, i.Key)
	return &c
}

// Dot projects one named field out of a
// record-typed child. Dot nodes are built by
// Select, which resolves the name once; evaluation
// only ever reads the baked-in ordinal.
type Dot struct {
	Inner   Node
	Field   data.Field
	Ordinal int
}

func (d *Dot) Type() data.Type { return d.Field.Type }

// Nullable is true when either the child may be
// absent (no record means no field) or the field
// itself is nullable.
func (d *Dot) Nullable() bool {
	return d.Inner.Nullable() || d.Field.Nullable
}

func (d *Dot) Foldable() bool { return d.Inner.Foldable() }

func (d *Dot) Resolved() bool {
	if !d.Inner.Resolved() {
		return false
	}
	rt, ok := d.Inner.Type().(*data.RecordType)
	return ok && d.Ordinal >= 0 && d.Ordinal < len(rt.Fields)
}

func (d *Dot) Eval(row data.Row) data.Value {
	v := d.Inner.Eval(row)
	if data.IsNull(v) {
		return data.Null{}
	}
	rec, ok := v.(*data.Record)
	if !ok {
		return data.Null{}
	}
	col, _ := rec.Col(d.Ordinal)
	if col == nil {
		return data.Null{}
	}
	return col
}

func (d *Dot) Equals(n Node) bool {
	d2, ok := n.(*Dot)
	return ok && d.Ordinal == d2.Ordinal &&
		d.Field.Equal(d2.Field) && d.Inner.Equals(d2.Inner)
}

func (d *Dot) text(dst *strings.Builder) {
	d.Inner.text(dst)
	dst.WriteByte('.')
	dst.WriteString(d.Field.Name)
}

func (d *Dot) walk(v Visitor) {
	Walk(v, d.Inner)
}

func (d *Dot) rewrite(r Rewriter) Node {
	c := *d
	c.Inner = Rewrite(r, d.Inner)
	return &c
}

// DotSpread projects one named field out of every
// record in a list-of-records child, producing a
// list of the same length and order. A null element
// maps to a null element at the same position.
type DotSpread struct {
	Inner   Node
	Field   data.Field
	Ordinal int
	// ElemNullable is the element-nullability of
	// the input list, which carries through to the
	// output: a present-but-null element and a
	// present element holding a null field are the
	// same observable outcome here.
	ElemNullable bool
}

func (d *DotSpread) Type() data.Type {
	return data.ListOf(d.Field.Type, d.ElemNullable)
}

func (d *DotSpread) Nullable() bool { return d.Inner.Nullable() }

func (d *DotSpread) Foldable() bool { return d.Inner.Foldable() }

func (d *DotSpread) Resolved() bool {
	if !d.Inner.Resolved() {
		return false
	}
	lt, ok := d.Inner.Type().(*data.ListType)
	if !ok {
		return false
	}
	rt, ok := lt.Elem.(*data.RecordType)
	return ok && d.Ordinal >= 0 && d.Ordinal < len(rt.Fields)
}

func (d *DotSpread) Eval(row data.Row) data.Value {
	v := d.Inner.Eval(row)
	if data.IsNull(v) {
		return data.Null{}
	}
	list, ok := v.(*data.List)
	if !ok {
		return data.Null{}
	}
	out := make([]data.Value, len(list.Items))
	for i, item := range list.Items {
		if data.IsNull(item) {
			out[i] = data.Null{}
			continue
		}
		rec, ok := item.(*data.Record)
		if !ok {
			out[i] = data.Null{}
			continue
		}
		col, _ := rec.Col(d.Ordinal)
		if col == nil {
			col = data.Null{}
		}
		out[i] = col
	}
	return data.NewList(out...)
}

func (d *DotSpread) Equals(n Node) bool {
	d2, ok := n.(*DotSpread)
	return ok && d.Ordinal == d2.Ordinal && d.ElemNullable == d2.ElemNullable &&
		d.Field.Equal(d2.Field) && d.Inner.Equals(d2.Inner)
}

func (d *DotSpread) text(dst *strings.Builder) {
	d.Inner.text(dst)
	dst.WriteString("[*].")
	dst.WriteString(d.Field.Name)
}

func (d *DotSpread) walk(v Visitor) {
	Walk(v, d.Inner)
}

func (d *DotSpread) rewrite(r Rewriter) Node {
	c := *d
	c.Inner = Rewrite(r, d.Inner)
	return &c
}

// Select builds a field access on inner by name,
// choosing the node kind from inner's static type:
// a record child yields a *Dot and a list-of-records
// child yields a *DotSpread. Any other child type
// (or an unresolved child, whose type cannot be
// inspected) fails with a *FieldAccessError; name
// resolution failures surface as *NoSuchFieldError
// or *AmbiguousFieldError.
func Select(inner Node, name string, eq Equivalence) (Node, error) {
	if !inner.Resolved() {
		return nil, &FieldAccessError{At: inner,
			Msg: fmt.Sprintf("cannot select %q from an unresolved expression", name)}
	}
	switch t := inner.Type().(type) {
	case *data.RecordType:
		ord, err := ResolveField(t.Fields, name, eq)
		if err != nil {
			return nil, err
		}
		return &Dot{Inner: inner, Field: t.Fields[ord], Ordinal: ord}, nil
	case *data.ListType:
		if rt, ok := t.Elem.(*data.RecordType); ok {
			ord, err := ResolveField(rt.Fields, name, eq)
			if err != nil {
				return nil, err
			}
			return &DotSpread{
				Inner:        inner,
				Field:        rt.Fields[ord],
				Ordinal:      ord,
				ElemNullable: t.ElemNullable,
			}, nil
		}
	}
	return nil, &FieldAccessError{
		At:   inner,
		Type: inner.Type(),
		Msg:  fmt.Sprintf("cannot select field %q from %s", name, inner.Type()),
	}
}
