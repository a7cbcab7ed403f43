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
	"errors"
	"sync"
	"testing"

	"github.com/terndb/tern/data"
)

func TestToString(t *testing.T) {
	testcases := []struct {
		node Node
		want string
	}{
		{Integer(42), "42"},
		{String("x"), `"x"`},
		{NewIndex(NewColumn("tags", 0, data.ListOf(data.StringType, false), false), Integer(1)), "tags[1]"},
		{NewMakeList(Integer(1), Integer(2)), "[1, 2]"},
		{NewMakeStruct(Bind("x", Integer(1)), Bind("y", Bool(true))), "{x: 1, y: true}"},
		{NewColumn("", 3, data.IntType, false), "$3"},
	}
	for i := range testcases {
		if got := ToString(testcases[i].node); got != testcases[i].want {
			t.Errorf("case %d: got %q, want %q", i, got, testcases[i].want)
		}
	}
}

func TestCheck(t *testing.T) {
	ok := NewMakeStruct(
		Bind("a", NewIndex(intList(1, 2), Integer(0))),
		Bind("b", NewMakeList(String("s"))),
	)
	if err := Check(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the unresolved leaf node is the reported fault,
	// not its resolved ancestors
	bad := NewMakeStruct(
		Bind("a", NewIndex(Integer(1), Integer(0))),
	)
	err := Check(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	var nr *NotResolvedError
	if !errors.As(err, &nr) {
		t.Fatalf("expected NotResolvedError, got %v", err)
	}
	if _, ok := nr.At.(*Index); !ok {
		t.Errorf("fault attributed to %T, want *Index", nr.At)
	}
}

func TestFold(t *testing.T) {
	n := NewIndex(intList(10, 20, 30), Integer(1))
	folded := Fold(n)
	c, ok := folded.(*Constant)
	if !ok {
		t.Fatalf("got %T, want *Constant", folded)
	}
	if !data.Equal(c.Value(), data.Int(20)) {
		t.Errorf("got %s, want 20", c.Value())
	}
	if !c.Type().Equal(data.IntType) {
		t.Errorf("got type %s, want int", c.Type())
	}

	// row-dependent subtrees stay put
	col := NewColumn("xs", 0, data.ListOf(data.IntType, false), false)
	mixed := NewMakeList(NewIndex(col, Integer(0)), Integer(5))
	folded = Fold(mixed)
	m, ok := folded.(*MakeList)
	if !ok {
		t.Fatalf("got %T, want *MakeList", folded)
	}
	if _, ok := m.Items[0].(*Index); !ok {
		t.Errorf("row-dependent item folded to %T", m.Items[0])
	}
	if _, ok := m.Items[1].(*Constant); !ok {
		t.Errorf("constant item is %T, want *Constant", m.Items[1])
	}

	// unresolved trees fold to themselves
	bad := NewMakeList(Integer(1), String("s"))
	if folded := Fold(bad); !folded.Equals(bad) {
		t.Error("unresolved tree must fold to itself")
	}
}

type swapColumns struct {
	with Node
}

func (s swapColumns) Walk(Node) Rewriter { return s }

func (s swapColumns) Rewrite(n Node) Node {
	if _, ok := n.(*Column); ok {
		return s.with
	}
	return n
}

func TestRewriteBuildsNewNodes(t *testing.T) {
	col := NewColumn("x", 0, data.IntType, false)
	orig := NewMakeList(NewIndex(intList(1, 2), col), col)
	snapshot := ToString(orig)

	got := Rewrite(swapColumns{with: Integer(1)}, orig)
	if got == Node(orig) {
		t.Fatal("rewrite must construct a new root")
	}
	if want := "[[1, 2][1], 1]"; ToString(got) != want {
		t.Errorf("got %q, want %q", ToString(got), want)
	}
	// the original tree is untouched
	if ToString(orig) != snapshot {
		t.Errorf("original mutated: %q", ToString(orig))
	}
	if _, ok := orig.Items[1].(*Column); !ok {
		t.Error("original child replaced in place")
	}
	evalEq(t, got, nil, data.NewList(data.Int(2), data.Int(1)))
}

func TestEquals(t *testing.T) {
	a := NewMakeStruct(
		Bind("x", NewIndex(intList(1, 2), Integer(0))),
	)
	b := NewMakeStruct(
		Bind("x", NewIndex(intList(1, 2), Integer(0))),
	)
	if !a.Equals(b) {
		t.Error("structurally identical trees must be equal")
	}
	c := NewMakeStruct(
		Bind("x", NewIndex(intList(1, 2), Integer(1))),
	)
	if a.Equals(c) {
		t.Error("different keys must not compare equal")
	}
	if !Equal(nil, nil) || Equal(a, nil) || Equal(nil, a) {
		t.Error("nil handling in Equal")
	}
}

func TestConcurrentEval(t *testing.T) {
	// one tree instance, many rows in flight at once
	col := NewColumn("u", 0, userType, false)
	sel, err := Select(col, "id", nil)
	if err != nil {
		t.Fatal(err)
	}
	tree := NewMakeStruct(
		Bind("id", sel),
		Bind("tags", NewMakeList(Integer(9), NewIndex(intList(1, 2), Integer(0)))),
	)
	if err := Check(tree); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := int64(g*100 + i)
				row := data.Row{data.NewRecord(data.Int(id), data.String("u"))}
				got := tree.Eval(row).(*data.Record)
				if v, _ := got.Col(0); !data.Equal(v, data.Int(id)) {
					t.Errorf("row %d: got %s", id, v)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

type countVisitor struct {
	n int
}

func (c *countVisitor) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	c.n++
	return c
}

func TestWalkVisitsEveryNode(t *testing.T) {
	tree := NewMakeStruct(
		Bind("a", NewIndex(intList(1), Integer(0))), // 3 nodes
		Bind("b", NewMakeList(Integer(1), String("x"))), // 3 nodes
	)
	c := &countVisitor{}
	Walk(c, tree)
	if c.n != 7 {
		t.Errorf("visited %d nodes, want 7", c.n)
	}
}
