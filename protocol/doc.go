// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the neurobridge wire format: the closed
// set of commands a client may send, the closed set of responses the
// server may return, their CBOR encoding, and the length-prefix framing
// that carries them over a Unix socket.
//
// Every message in either direction is one frame:
//
//	[4 bytes payload length, big-endian uint32] [payload]
//
// There is no magic number, version byte, or checksum. The payload is a
// single CBOR map (see [EncodeCommand]) of the form
//
//	{"type": <tag>, "body": <variant fields>}
//
// where "body" is omitted for variants that carry no fields. The tag is
// what makes the encoding self-describing: [DecodeCommand] and
// [DecodeResponse] read it first and then decode the body into the
// matching Go type.
//
// Commands ([Ping], [GetGPUInfo]) and responses ([Pong], [GPUInfo],
// [Error], [Ack]) are sealed interfaces: only types in this package
// implement them, so a type switch over a decoded value is exhaustive.
//
// The package has no notion of connections or sessions. [ReadFrame] and
// [WriteFrame] operate on any io.Reader/io.Writer; the bridge package
// drives them from a per-connection loop.
package protocol
