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
	"testing"

	"github.com/terndb/tern/data"
)

func TestMakeStruct(t *testing.T) {
	m := NewMakeStruct(
		Bind("x", Integer(1)),
		Bind("y", String("s")),
	)
	if !m.Resolved() || !m.Foldable() {
		t.Fatal("constant record constructor must be resolved and foldable")
	}
	if m.Nullable() {
		t.Error("a constructed record is never null")
	}

	want := data.RecordOf(
		data.Field{Name: "x", Type: data.IntType},
		data.Field{Name: "y", Type: data.StringType},
	)
	if tt := m.Type(); !tt.Equal(want) {
		t.Errorf("got type %s, want %s", tt, want)
	}

	got := m.Eval(nil).(*data.Record)
	if v, _ := got.Col(0); !data.Equal(v, data.Int(1)) {
		t.Errorf("slot 0: got %s", v)
	}
	if v, _ := got.Col(1); !data.Equal(v, data.String("s")) {
		t.Errorf("slot 1: got %s", v)
	}
}

func TestMakeStructOrdinalCorrespondence(t *testing.T) {
	// slot i of the result must track child i, so a field
	// access resolved against the derived type reads the
	// matching value
	m := NewMakeStruct(
		Bind("a", String("first")),
		Bind("b", String("second")),
		Bind("a", String("third")), // duplicate names are legal here
	)
	rt := m.Type().(*data.RecordType)
	if len(rt.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(rt.Fields))
	}
	rec := m.Eval(nil).(*data.Record)
	for i, want := range []string{"first", "second", "third"} {
		if rt.Fields[i].Name == "" {
			t.Errorf("field %d lost its name", i)
		}
		if v, _ := rec.Col(i); !data.Equal(v, data.String(want)) {
			t.Errorf("slot %d: got %s, want %q", i, v, want)
		}
	}

	// ...but resolving the duplicated name must fail
	if _, err := Select(m, "a", CaseSensitive); err == nil {
		t.Error("selecting a duplicated field name must fail")
	}
	if _, err := Select(m, "b", CaseSensitive); err != nil {
		t.Errorf("selecting the unique field: %v", err)
	}
}

func TestMakeStructNullableSlots(t *testing.T) {
	m := NewMakeStruct(
		Bind("u", NewColumn("u", 0, data.IntType, true)),
		Bind("v", Integer(3)),
	)
	rt := m.Type().(*data.RecordType)
	if !rt.Fields[0].Nullable || rt.Fields[1].Nullable {
		t.Errorf("slot nullability must track the children: %s", rt)
	}
	if m.Foldable() {
		t.Error("a row-dependent child makes the constructor unfoldable")
	}

	got := m.Eval(data.Row{data.Null{}})
	rec := got.(*data.Record)
	if v, _ := rec.Col(0); !data.IsNull(v) {
		t.Errorf("slot 0: got %s, want null", v)
	}
}

func TestMakeListEmpty(t *testing.T) {
	m := NewMakeList()
	if !m.Resolved() || !m.Foldable() {
		t.Fatal("the empty list constructor must be resolved and foldable")
	}
	want := data.ListOf(data.AnyType, false)
	if tt := m.Type(); !tt.Equal(want) {
		t.Errorf("got type %s, want %s", tt, want)
	}
	got := m.Eval(nil).(*data.List)
	if got.Len() != 0 {
		t.Errorf("got %d elements, want 0", got.Len())
	}
}

func TestMakeListHomogeneous(t *testing.T) {
	m := NewMakeList(Integer(1), Integer(2), Integer(3))
	want := data.ListOf(data.IntType, false)
	if tt := m.Type(); !tt.Equal(want) {
		t.Errorf("got type %s, want %s", tt, want)
	}
	if m.Nullable() {
		t.Error("a constructed list is never null")
	}
	evalEq(t, m, nil, data.NewList(data.Int(1), data.Int(2), data.Int(3)))
}

func TestMakeListNullableElement(t *testing.T) {
	m := NewMakeList(Integer(1), Const(data.Null{}, data.IntType))
	lt := m.Type().(*data.ListType)
	if !lt.ElemNullable {
		t.Error("a nullable child must derive a nullable element slot")
	}
	// every child is evaluated; the null lands in place
	evalEq(t, m, nil, data.NewList(data.Int(1), data.Null{}))
}

func TestMakeListMixed(t *testing.T) {
	m := NewMakeList(Integer(1), String("s"))
	if m.Resolved() {
		t.Fatal("mixed element types must not resolve")
	}
	if err := Check(m); err == nil {
		t.Fatal("Check must reject the mixed constructor")
	}
	shouldPanic(t, func() { m.Type() })
}

func TestEvalIdempotent(t *testing.T) {
	row := data.Row{data.NewRecord(data.Int(9), data.String("z"))}
	child := NewColumn("u", 0, userType, false)
	sel, err := Select(child, "name", nil)
	if err != nil {
		t.Fatal(err)
	}
	n := NewMakeStruct(
		Bind("name", sel),
		Bind("tags", NewMakeList(String("a"), String("b"))),
	)
	first := n.Eval(row)
	second := n.Eval(row)
	if !data.Equal(first, second) {
		t.Errorf("repeated evaluation disagrees: %s vs %s", first, second)
	}
}

func TestBindingIdentity(t *testing.T) {
	b := Bind("x", Integer(1))
	b2 := Bind("x", Integer(1))
	if b.ID == b2.ID {
		t.Error("distinct bindings must get distinct IDs")
	}
	if !b.equals(b2) {
		t.Error("IDs must not participate in structural equality")
	}
}
