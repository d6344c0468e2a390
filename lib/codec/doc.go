// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the bridge's standard CBOR encoding
// configuration.
//
// Every payload carried inside a protocol frame is a single CBOR data
// item. This package holds the shared encoding and decoding modes so
// that the server, the client library, and the tests all encode
// identically. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// There is no stream API. Framing is done by the protocol package with
// an explicit length prefix, so decoding always operates on a complete
// buffer and never on a live connection.
//
// # Struct Tag Rules
//
// Types that only ever cross the socket use `cbor` struct tags. Types
// that are also rendered as JSON (CLI output) use `json` tags, which
// fxamacker/cbor reads as a fallback. Never put both tags on the same
// field.
package codec
