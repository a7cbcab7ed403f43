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

// Package data implements the value and type model shared
// by the expression layer and the surrounding engine.
//
// A Value is one member of a closed union (null, scalars,
// List, Map, Record); a Type describes the static shape of
// the Values an expression produces. Values are not
// self-describing: a Value's shape is only meaningful
// relative to the Type derived for the expression that
// produced it.
package data

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Kind enumerates the variants of both
// Type and Value.
type Kind uint8

const (
	// KindAny is the placeholder kind used
	// where no concrete type can be derived
	// (for example, the element type of an
	// empty list constructor).
	KindAny Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindTimestamp
	KindDecimal
	KindList
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindDecimal:
		return "decimal"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// Type is a static type descriptor.
//
// A Type should be one of
//
//	Primitive, *ListType, *MapType, *RecordType
type Type interface {
	Kind() Kind
	// Equal returns whether this type and t
	// describe the same shape. Field metadata
	// does not participate in type equality.
	Equal(t Type) bool
	String() string
}

var (
	_ Type = Primitive(0)
	_ Type = (*ListType)(nil)
	_ Type = (*MapType)(nil)
	_ Type = (*RecordType)(nil)
)

// Primitive is a scalar (leaf) type.
type Primitive Kind

var (
	AnyType       = Primitive(KindAny)
	NullType      = Primitive(KindNull)
	BoolType      = Primitive(KindBool)
	IntType       = Primitive(KindInt)
	FloatType     = Primitive(KindFloat)
	StringType    = Primitive(KindString)
	TimestampType = Primitive(KindTimestamp)
	DecimalType   = Primitive(KindDecimal)
)

func (p Primitive) Kind() Kind { return Kind(p) }

func (p Primitive) Equal(t Type) bool {
	p2, ok := t.(Primitive)
	return ok && p == p2
}

func (p Primitive) String() string { return Kind(p).String() }

// ListType is the type of ordered sequences
// with a single element type.
type ListType struct {
	Elem Type
	// ElemNullable indicates whether individual
	// elements may be null even when the list
	// itself is present.
	ElemNullable bool
}

// ListOf constructs the type of lists of elem.
func ListOf(elem Type, elemNullable bool) *ListType {
	return &ListType{Elem: elem, ElemNullable: elemNullable}
}

func (l *ListType) Kind() Kind { return KindList }

func (l *ListType) Equal(t Type) bool {
	l2, ok := t.(*ListType)
	return ok && l.ElemNullable == l2.ElemNullable && l.Elem.Equal(l2.Elem)
}

func (l *ListType) String() string {
	var sb strings.Builder
	sb.WriteString("list<")
	sb.WriteString(l.Elem.String())
	if l.ElemNullable {
		sb.WriteByte('?')
	}
	sb.WriteByte('>')
	return sb.String()
}

// MapType is the type of associative containers
// with homogeneous key and value types.
type MapType struct {
	Key   Type
	Value Type
	// ValueNullable indicates whether a present
	// key may be associated with a null value.
	ValueNullable bool
}

// MapOf constructs the type of maps from key to value.
func MapOf(key, value Type, valueNullable bool) *MapType {
	return &MapType{Key: key, Value: value, ValueNullable: valueNullable}
}

func (m *MapType) Kind() Kind { return KindMap }

func (m *MapType) Equal(t Type) bool {
	m2, ok := t.(*MapType)
	return ok && m.ValueNullable == m2.ValueNullable &&
		m.Key.Equal(m2.Key) && m.Value.Equal(m2.Value)
}

func (m *MapType) String() string {
	var sb strings.Builder
	sb.WriteString("map<")
	sb.WriteString(m.Key.String())
	sb.WriteByte(',')
	sb.WriteString(m.Value.String())
	if m.ValueNullable {
		sb.WriteByte('?')
	}
	sb.WriteByte('>')
	return sb.String()
}

// Field is one named slot of a RecordType.
//
// Field names need not be unique within a record;
// name resolution is responsible for rejecting
// ambiguous references.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
	// Meta is an opaque bag of annotations
	// attached by upper layers (source column,
	// collation, and so on). It is carried
	// verbatim and never interpreted here.
	Meta map[string]string
}

// Equal returns whether f and f2 have the same
// name, type, and nullability. Meta is ignored.
func (f Field) Equal(f2 Field) bool {
	return f.Name == f2.Name && f.Nullable == f2.Nullable && f.Type.Equal(f2.Type)
}

// RecordType is the type of structured values
// with named, ordered fields.
type RecordType struct {
	Fields []Field
}

// RecordOf constructs a record type from fields.
func RecordOf(fields ...Field) *RecordType {
	return &RecordType{Fields: fields}
}

func (r *RecordType) Kind() Kind { return KindRecord }

func (r *RecordType) Equal(t Type) bool {
	r2, ok := t.(*RecordType)
	return ok && slices.EqualFunc(r.Fields, r2.Fields, Field.Equal)
}

func (r *RecordType) String() string {
	var sb strings.Builder
	sb.WriteString("record{")
	for i := range r.Fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r.Fields[i].Name)
		sb.WriteByte(':')
		sb.WriteString(r.Fields[i].Type.String())
		if r.Fields[i].Nullable {
			sb.WriteByte('?')
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
