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

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/terndb/tern/data"
)

// MakeList constructs a new list value from its
// items on every evaluation. The element types of
// all items must agree; an empty MakeList produces
// a list of the untyped placeholder element.
type MakeList struct {
	Items []Node
}

// NewMakeList constructs a list constructor over
// items. The items slice is retained.
func NewMakeList(items ...Node) *MakeList {
	return &MakeList{Items: items}
}

// elem derives the common element type, or reports
// failure when the items disagree.
func (m *MakeList) elem() (data.Type, bool) {
	var et data.Type
	for i := range m.Items {
		t := m.Items[i].Type()
		if et == nil {
			et = t
			continue
		}
		if !et.Equal(t) {
			return nil, false
		}
	}
	if et == nil {
		return data.AnyType, true
	}
	return et, true
}

// Type panics when the items do not share a single
// element type; forcing derivation on such a node
// is a programming error in the caller, which must
// gate on Resolved first.
func (m *MakeList) Type() data.Type {
	et, ok := m.elem()
	if !ok {
		panic(fmt.Sprintf("MakeList.Type: mixed element types in %q", ToString(m)))
	}
	nullable := false
	for i := range m.Items {
		if m.Items[i].Nullable() {
			nullable = true
			break
		}
	}
	return data.ListOf(et, nullable)
}

// Nullable is always false: the constructed list
// itself is never null, though its elements may be.
func (m *MakeList) Nullable() bool { return false }

func (m *MakeList) Foldable() bool {
	for i := range m.Items {
		if !m.Items[i].Foldable() {
			return false
		}
	}
	return true
}

func (m *MakeList) Resolved() bool {
	for i := range m.Items {
		if !m.Items[i].Resolved() {
			return false
		}
	}
	_, ok := m.elem()
	return ok
}

// Eval evaluates every item exactly once, in
// declaration order, with no short-circuiting on
// intermediate nulls.
func (m *MakeList) Eval(row data.Row) data.Value {
	items := make([]data.Value, len(m.Items))
	for i := range m.Items {
		v := m.Items[i].Eval(row)
		if v == nil {
			v = data.Null{}
		}
		items[i] = v
	}
	return data.NewList(items...)
}

func (m *MakeList) Equals(n Node) bool {
	m2, ok := n.(*MakeList)
	return ok && slices.EqualFunc(m.Items, m2.Items, Node.Equals)
}

func (m *MakeList) text(dst *strings.Builder) {
	dst.WriteByte('[')
	for i := range m.Items {
		if i > 0 {
			dst.WriteString(", ")
		}
		m.Items[i].text(dst)
	}
	dst.WriteByte(']')
}

func (m *MakeList) walk(v Visitor) {
	for i := range m.Items {
		Walk(v, m.Items[i])
	}
}

func (m *MakeList) rewrite(r Rewriter) Node {
	c := &MakeList{Items: make([]Node, len(m.Items))}
	for i := range m.Items {
		c.Items[i] = Rewrite(r, m.Items[i])
	}
	return c
}

// Binding is one named child of a MakeStruct.
//
// ID identifies the binding stably across tree
// rewrites: rebinding always constructs new nodes,
// so planners track a binding by ID rather than by
// pointer identity.
type Binding struct {
	ID   uuid.UUID
	Name string
	Expr Node
	// Meta is carried into the corresponding
	// record field verbatim.
	Meta map[string]string
}

// Bind creates a binding of e under name with a
// fresh ID.
func Bind(name string, e Node) Binding {
	return Binding{ID: uuid.New(), Name: name, Expr: e}
}

// equals compares bindings structurally; IDs do
// not participate.
func (b Binding) equals(b2 Binding) bool {
	return b.Name == b2.Name && b.Expr.Equals(b2.Expr)
}

// MakeStruct constructs a new record value from
// named children on every evaluation. Slot i of the
// result always corresponds to child i; downstream
// field accesses rely on this correspondence.
type MakeStruct struct {
	Fields []Binding
}

// NewMakeStruct constructs a record constructor
// over fields. The fields slice is retained.
func NewMakeStruct(fields ...Binding) *MakeStruct {
	return &MakeStruct{Fields: fields}
}

func (m *MakeStruct) Type() data.Type {
	fields := make([]data.Field, len(m.Fields))
	for i := range m.Fields {
		fields[i] = data.Field{
			Name:     m.Fields[i].Name,
			Type:     m.Fields[i].Expr.Type(),
			Nullable: m.Fields[i].Expr.Nullable(),
			Meta:     m.Fields[i].Meta,
		}
	}
	return data.RecordOf(fields...)
}

// Nullable is always false: the constructed record
// itself is never null, though its slots may be.
func (m *MakeStruct) Nullable() bool { return false }

func (m *MakeStruct) Foldable() bool {
	for i := range m.Fields {
		if !m.Fields[i].Expr.Foldable() {
			return false
		}
	}
	return true
}

func (m *MakeStruct) Resolved() bool {
	for i := range m.Fields {
		if !m.Fields[i].Expr.Resolved() {
			return false
		}
	}
	return true
}

// Eval evaluates every child exactly once, in
// declaration order.
func (m *MakeStruct) Eval(row data.Row) data.Value {
	cols := make([]data.Value, len(m.Fields))
	for i := range m.Fields {
		v := m.Fields[i].Expr.Eval(row)
		if v == nil {
			v = data.Null{}
		}
		cols[i] = v
	}
	return data.NewRecord(cols...)
}

func (m *MakeStruct) Equals(n Node) bool {
	m2, ok := n.(*MakeStruct)
	return ok && slices.EqualFunc(m.Fields, m2.Fields, Binding.equals)
}

func (m *MakeStruct) text(dst *strings.Builder) {
	dst.WriteByte('{')
	for i := range m.Fields {
		if i > 0 {
			dst.WriteString(", ")
		}
		dst.WriteString(m.Fields[i].Name)
		dst.WriteString(": ")
		m.Fields[i].Expr.text(dst)
	}
	dst.WriteByte('}')
}

func (m *MakeStruct) walk(v Visitor) {
	for i := range m.Fields {
		Walk(v, m.Fields[i].Expr)
	}
}

func (m *MakeStruct) rewrite(r Rewriter) Node {
	c := &MakeStruct{Fields: slices.Clone(m.Fields)}
	for i := range c.Fields {
		c.Fields[i].Expr = Rewrite(r, m.Fields[i].Expr)
	}
	return c
}
