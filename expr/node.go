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

// Package expr implements typed, row-at-a-time
// expression trees over the data value model:
// element and field accessors, list and record
// constructors, and the leaves they compose.
//
// Nodes are immutable once constructed, so a tree
// may be evaluated concurrently against different
// rows without synchronization. Rebinding a child
// always builds a new node (see Rewrite).
package expr

import (
	"fmt"
	"strings"

	"github.com/terndb/tern/data"
)

// Node is one expression in a tree.
//
// Type derives the static result type from the
// children's types. It must only be called when
// Resolved returns true; several node kinds panic
// otherwise, since their result type is undefined
// for mismatched children.
//
// Eval is a pure function of the node's fixed
// children and the given row; it never returns an
// error. Dynamic misses (absent map key, ordinal
// out of range, null anywhere upstream) evaluate
// to null. Callers must not evaluate a node for
// which Resolved is false; use Check to gate
// execution.
type Node interface {
	Type() data.Type
	// Nullable returns whether evaluation may
	// yield null.
	Nullable() bool
	// Foldable returns whether the node's value
	// is independent of the input row, i.e. all
	// of its children are foldable.
	Foldable() bool
	// Resolved returns whether all children are
	// resolved and this node's own type-shape
	// preconditions hold.
	Resolved() bool
	Eval(row data.Row) data.Value

	// Equals returns whether this node is
	// structurally equivalent to another node.
	Equals(Node) bool

	text(dst *strings.Builder)
	walk(Visitor)
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// ToString returns the canonical textual
// representation of n.
func ToString(n Node) string {
	var sb strings.Builder
	n.text(&sb)
	return sb.String()
}

// Visitor is an interface that must be satisfied
// by the argument to Walk.
//
// A Visitor's Visit method is invoked for each node
// encountered by Walk. If the result visitor w is
// not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of
// w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses an expression tree in depth-first
// order: it starts by calling v.Visit(n); n must
// not be nil. If the visitor w returned by
// v.Visit(n) is not nil, Walk is invoked
// recursively with visitor w for each of the
// non-nil children of n, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// Rewriter accepts a Node and returns
// a new node (or just its argument).
type Rewriter interface {
	// Rewrite is applied to nodes in depth-first
	// order, and each node is replaced by the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal and
	// the returned Rewriter is used for all the
	// children of Node. If the returned rewriter
	// is nil, then traversal does not proceed
	// past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	// rewrite returns a copy of the receiver with
	// each child passed through Rewrite(r, child);
	// the receiver is never modified.
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in
// depth-first order. Nodes are never mutated in
// place: a node whose children change is replaced
// by a newly-constructed copy, so trees shared
// with concurrent evaluators stay valid.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	return r.Rewrite(n)
}

// NotResolvedError is the error produced by Check
// for a node whose type-shape preconditions do not
// hold even though its children are resolved.
type NotResolvedError struct {
	At Node
}

func (e *NotResolvedError) Error() string {
	return fmt.Sprintf("%q is not resolved", ToString(e.At))
}

// immediate tests only the direct children of the
// node it is walked over.
type immediate struct {
	ok bool
}

func (r *immediate) Visit(n Node) Visitor {
	if n != nil && !n.Resolved() {
		r.ok = false
	}
	return nil
}

type checkwalk struct {
	errs []error
}

func (c *checkwalk) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	if !n.Resolved() {
		kids := &immediate{ok: true}
		n.walk(kids)
		if kids.ok {
			// the fault originates here, not below
			c.errs = append(c.errs, &NotResolvedError{At: n})
		}
	}
	return c
}

func combine(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("%w and %d other errors", errs[0], len(errs)-1)
}

// Check walks the tree rooted at n and returns a
// non-nil error if any node is unresolved. Planners
// should gate evaluation on Check, since Eval and
// Type are undefined for unresolved nodes.
func Check(n Node) error {
	c := &checkwalk{}
	Walk(c, n)
	if c.errs == nil {
		return nil
	}
	return combine(c.errs)
}

type folder struct{}

func (folder) Walk(n Node) Rewriter { return folder{} }

func (folder) Rewrite(n Node) Node {
	if _, ok := n.(*Constant); ok {
		return n
	}
	if n.Resolved() && n.Foldable() {
		return Const(n.Eval(nil), n.Type())
	}
	return n
}

// Fold replaces every foldable subtree of n with
// the constant it evaluates to and returns the
// rewritten tree. n itself is not modified.
// Unresolved subtrees are left untouched.
func Fold(n Node) Node {
	return Rewrite(folder{}, n)
}
