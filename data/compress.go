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
	"runtime"

	"github.com/klauspost/compress/zstd"
)

// zstd framing for encoded values and rows, used when
// shipping constants or spilled batches between plan
// stages. The encoder and decoder are shared; both are
// safe for concurrent use.

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdEncoder = enc
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = dec
}

// Compress appends a zstd frame containing src to dst
// and returns the result.
func Compress(src, dst []byte) []byte {
	return zstdEncoder.EncodeAll(src, dst)
}

// Decompress appends the decompressed contents of the
// zstd frame in src to dst and returns the result.
// It is safe to call concurrently.
func Decompress(src, dst []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, dst)
}
