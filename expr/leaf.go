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
	"strconv"
	"strings"

	"github.com/terndb/tern/data"
)

// Constant is a leaf node holding a fixed value.
type Constant struct {
	val data.Value
	typ data.Type
}

// Const constructs a constant of the given type.
// A nil value is normalized to null.
func Const(v data.Value, t data.Type) *Constant {
	if v == nil {
		v = data.Null{}
	}
	return &Constant{val: v, typ: t}
}

// Integer constructs an int constant.
func Integer(i int64) *Constant { return Const(data.Int(i), data.IntType) }

// Float constructs a float constant.
func Float(f float64) *Constant { return Const(data.Float(f), data.FloatType) }

// String constructs a string constant.
func String(s string) *Constant { return Const(data.String(s), data.StringType) }

// Bool constructs a boolean constant.
func Bool(b bool) *Constant { return Const(data.Bool(b), data.BoolType) }

// Null constructs the null constant.
func Null() *Constant { return Const(data.Null{}, data.NullType) }

// Value returns the constant's value.
func (c *Constant) Value() data.Value { return c.val }

func (c *Constant) Type() data.Type { return c.typ }

func (c *Constant) Nullable() bool { return data.IsNull(c.val) }

func (c *Constant) Foldable() bool { return true }

func (c *Constant) Resolved() bool { return c.typ != nil }

func (c *Constant) Eval(_ data.Row) data.Value { return c.val }

func (c *Constant) Equals(n Node) bool {
	c2, ok := n.(*Constant)
	return ok && c.typ.Equal(c2.typ) && data.Equal(c.val, c2.val)
}

func (c *Constant) text(dst *strings.Builder) {
	dst.WriteString(c.val.String())
}

func (c *Constant) walk(Visitor) {}

// Column is a leaf node that projects one slot out
// of the input row. The ordinal and declared type
// are fixed when the enclosing plan binds the
// expression to its input schema.
type Column struct {
	name    string
	ordinal int
	typ     data.Type
	nilable bool
}

// NewColumn constructs a reference to row slot
// ordinal with the given declared type.
func NewColumn(name string, ordinal int, typ data.Type, nullable bool) *Column {
	return &Column{name: name, ordinal: ordinal, typ: typ, nilable: nullable}
}

// Name returns the column's display name.
func (c *Column) Name() string { return c.name }

// Ordinal returns the row slot this column reads.
func (c *Column) Ordinal() int { return c.ordinal }

func (c *Column) Type() data.Type { return c.typ }

func (c *Column) Nullable() bool { return c.nilable }

func (c *Column) Foldable() bool { return false }

func (c *Column) Resolved() bool { return c.typ != nil && c.ordinal >= 0 }

func (c *Column) Eval(row data.Row) data.Value {
	if c.ordinal >= len(row) || row[c.ordinal] == nil {
		return data.Null{}
	}
	return row[c.ordinal]
}

func (c *Column) Equals(n Node) bool {
	c2, ok := n.(*Column)
	return ok && c.ordinal == c2.ordinal && c.name == c2.name &&
		c.nilable == c2.nilable && c.typ.Equal(c2.typ)
}

func (c *Column) text(dst *strings.Builder) {
	if c.name != "" {
		dst.WriteString(c.name)
		return
	}
	dst.WriteByte('$')
	dst.WriteString(strconv.Itoa(c.ordinal))
}

func (c *Column) walk(Visitor) {}
