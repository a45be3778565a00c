// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package variant implements the Parquet/Arrow Variant binary encoding: a
// self-describing, schema-less format for JSON-like semi-structured data.
//
// A Variant is a pair of byte blobs, metadata and value. Metadata holds a
// sorted dictionary of field-name strings shared across many values; value
// holds the encoding of a single (possibly nested) value that references
// the dictionary by small integer field IDs.
//
// There are three ways to work with an encoded Variant:
//
//  1. NewMetadataReader / NewValueReader give zero-copy, read-only views
//     over an existing (metadata, value) pair. ObjectReader and
//     ArrayReader, reached through ValueReader, recurse into containers
//     without copying the encoded bytes.
//  2. NewValueBuilder gives an imperative builder: append primitives or
//     finish Object/Array containers over the bytes already appended.
//     VariantValue builds on top of it to give a materialized tree with
//     a two-pass Encode.
//  3. Marshal/Unmarshal behave like the standard library's encoding/json:
//     marshal converts Go values (structs, maps, slices, primitives) into
//     a Variant, and Unmarshal decodes a Variant into a pointer to a Go
//     value.
//
// EncodeJSON and WriteJSON (which takes a ValueReader) provide the streaming
// conversions to and from JSON text described by the Variant spec.
package variant
