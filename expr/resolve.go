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

// Equivalence decides whether a candidate field
// name matches a target name. The analysis layer
// supplies it so that the matching policy (case
// sensitivity, collation) stays outside this
// package.
type Equivalence func(candidate, target string) bool

// CaseSensitive matches names byte-for-byte.
func CaseSensitive(candidate, target string) bool {
	return candidate == target
}

// CaseInsensitive matches names under Unicode
// case folding.
func CaseInsensitive(candidate, target string) bool {
	return strings.EqualFold(candidate, target)
}

// NoSuchFieldError is returned by ResolveField when
// no field matches the target name.
type NoSuchFieldError struct {
	Name   string
	Fields []data.Field
}

func (e *NoSuchFieldError) Error() string {
	return fmt.Sprintf("no field %q among %s", e.Name, fieldNames(e.Fields))
}

// AmbiguousFieldError is returned by ResolveField
// when two or more fields match the target name.
type AmbiguousFieldError struct {
	Name string
	// Ordinals are the positions of every
	// matching field, in field order.
	Ordinals []int
	Fields   []data.Field
}

func (e *AmbiguousFieldError) Error() string {
	return fmt.Sprintf("field %q is ambiguous: matches %d of %s",
		e.Name, len(e.Ordinals), fieldNames(e.Fields))
}

func fieldNames(fields []data.Field) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fields[i].Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// ResolveField scans fields for the unique entry
// whose name is equivalent to name and returns its
// ordinal. A nil eq means CaseSensitive.
//
// Zero matches yield a *NoSuchFieldError and two or
// more matches yield an *AmbiguousFieldError; the
// resolved ordinal is only meaningful when the
// returned error is nil. Resolution happens once,
// at node-construction time; evaluation never
// repeats name lookup.
func ResolveField(fields []data.Field, name string, eq Equivalence) (int, error) {
	if eq == nil {
		eq = CaseSensitive
	}
	var matches []int
	for i := range fields {
		if eq(fields[i].Name, name) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, &NoSuchFieldError{Name: name, Fields: fields}
	case 1:
		return matches[0], nil
	default:
		return -1, &AmbiguousFieldError{Name: name, Ordinals: matches, Fields: fields}
	}
}
