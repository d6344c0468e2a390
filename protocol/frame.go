// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// LengthPrefixSize is the size of the frame header: a big-endian
// uint32 payload length.
const LengthPrefixSize = 4

// MaxPayloadLength caps the declared length of a single frame. Every
// legitimate payload is a few dozen bytes; the cap exists so a corrupt
// or hostile length prefix cannot make the reader allocate gigabytes.
const MaxPayloadLength = 16 * 1024 * 1024

var (
	// ErrConnectionClosed is returned by ReadFrame when the stream ends
	// before a complete length prefix has been read. When no bytes at
	// all were read the error also wraps io.EOF, which is how a session
	// recognizes a clean disconnect between requests.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrTruncatedPayload is returned by ReadFrame when the stream ends
	// after the length prefix but before the declared number of payload
	// bytes arrived.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrIncompleteFrame is returned by ReadFrame when the stream fails
	// with something other than end of stream, such as a deadline,
	// after part of a frame has been read. The underlying error is
	// wrapped as well.
	ErrIncompleteFrame = errors.New("incomplete frame")

	// ErrPayloadTooLarge is returned when a frame's length exceeds
	// MaxPayloadLength, on either the read or the write side.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Frame returns payload prefixed with its 4-byte big-endian length.
func Frame(payload []byte) []byte {
	framed := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(framed[:LengthPrefixSize], uint32(len(payload)))
	copy(framed[LengthPrefixSize:], payload)
	return framed
}

// WriteFrame writes the framed payload to w in full. The prefix and
// payload go out in a single buffer so that a concurrent reader on the
// far side never observes a prefix without at least the start of its
// payload. Short writes are continued until every byte is written or w
// reports an error.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadLength {
		return fmt.Errorf("%w: %d bytes exceeds maximum %d", ErrPayloadTooLarge, len(payload), MaxPayloadLength)
	}
	remaining := Frame(payload)
	for len(remaining) > 0 {
		written, err := w.Write(remaining)
		remaining = remaining[written:]
		if err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		if written == 0 {
			return fmt.Errorf("writing frame: %w", io.ErrShortWrite)
		}
	}
	return nil
}

// ReadFrame reads exactly one frame from r and returns its payload.
// A zero-length frame yields an empty, non-nil slice.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [LengthPrefixSize]byte
	if read, err := io.ReadFull(r, header[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		case read > 0:
			return nil, fmt.Errorf("%w: read %d of %d length bytes: %w", ErrIncompleteFrame, read, LengthPrefixSize, err)
		}
		return nil, fmt.Errorf("reading frame length: %w", err)
	}

	payloadLength := binary.BigEndian.Uint32(header[:])
	if payloadLength > MaxPayloadLength {
		return nil, fmt.Errorf("%w: declared length %d exceeds maximum %d", ErrPayloadTooLarge, payloadLength, MaxPayloadLength)
	}

	payload := make([]byte, payloadLength)
	if payloadLength == 0 {
		return payload, nil
	}
	read, err := io.ReadFull(r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: received %d of %d bytes", ErrTruncatedPayload, read, payloadLength)
		}
		return nil, fmt.Errorf("%w: received %d of %d bytes: %w", ErrIncompleteFrame, read, payloadLength, err)
	}
	return payload, nil
}
