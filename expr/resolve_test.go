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
	"reflect"
	"testing"

	"github.com/terndb/tern/data"
)

func named(names ...string) []data.Field {
	fields := make([]data.Field, len(names))
	for i := range names {
		fields[i] = data.Field{Name: names[i], Type: data.IntType}
	}
	return fields
}

func TestResolveField(t *testing.T) {
	testcases := []struct {
		fields []data.Field
		name   string
		eq     Equivalence
		want   int
		kind   error
	}{
		{
			fields: named("a", "b"),
			name:   "b",
			want:   1,
		},
		{
			fields: named("a", "b"),
			name:   "a",
			want:   0,
		},
		{
			fields: named("a", "b"),
			name:   "c",
			kind:   &NoSuchFieldError{},
		},
		{
			fields: named("a", "b", "a"),
			name:   "a",
			kind:   &AmbiguousFieldError{},
		},
		{
			fields: named("a", "A"),
			name:   "A",
			want:   1,
		},
		{
			// case folding makes both candidates match
			fields: named("a", "A"),
			name:   "a",
			eq:     CaseInsensitive,
			kind:   &AmbiguousFieldError{},
		},
		{
			fields: named("Widget", "gadget"),
			name:   "widget",
			eq:     CaseInsensitive,
			want:   0,
		},
		{
			fields: nil,
			name:   "a",
			kind:   &NoSuchFieldError{},
		},
	}
	for i := range testcases {
		tc := &testcases[i]
		ord, err := ResolveField(tc.fields, tc.name, tc.eq)
		if tc.kind != nil {
			if err == nil {
				t.Errorf("case %d: expected error, got ordinal %d", i, ord)
				continue
			}
			dst := reflect.New(reflect.TypeOf(tc.kind))
			if !errors.As(err, dst.Interface()) {
				t.Errorf("case %d: error %v is not %T", i, err, tc.kind)
			}
			if err.Error() == "" {
				t.Errorf("case %d: empty error message", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
			continue
		}
		if ord != tc.want {
			t.Errorf("case %d: got ordinal %d, want %d", i, ord, tc.want)
		}
	}
}

func TestResolveFieldAmbiguousDetail(t *testing.T) {
	_, err := ResolveField(named("a", "b", "a"), "a", CaseSensitive)
	var amb *AmbiguousFieldError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousFieldError, got %v", err)
	}
	if !reflect.DeepEqual(amb.Ordinals, []int{0, 2}) {
		t.Errorf("got ordinals %v, want [0 2]", amb.Ordinals)
	}
}

func TestResolveFieldNotFoundDetail(t *testing.T) {
	fields := named("a", "b")
	_, err := ResolveField(fields, "c", nil)
	var missing *NoSuchFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected NoSuchFieldError, got %v", err)
	}
	if missing.Name != "c" || len(missing.Fields) != 2 {
		t.Errorf("error lacks context: %+v", missing)
	}
}
