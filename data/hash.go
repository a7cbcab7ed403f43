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
	"github.com/dchest/siphash"
)

// Hash returns a 64-bit hash of v computed over its
// canonical encoding, so Equal values always hash
// identically (including Int/Float pairs that denote
// the same number). The hash is stable within a
// process but not across releases; do not persist it.
func Hash(v Value) uint64 {
	return hashBytes(Encode(v))
}

// Hash128 is Hash with a 128-bit result, for callers
// (spill files, distinct sets) that cannot tolerate
// 64-bit collision rates.
func Hash128(v Value) (lo, hi uint64) {
	return siphash.Hash128(0, 0, Encode(v))
}

func hashBytes(b []byte) uint64 {
	return siphash.Hash(0, 0, b)
}
