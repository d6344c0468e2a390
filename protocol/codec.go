// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/neurobridge/lib/codec"
)

// ErrMalformedPayload is wrapped by every decode failure: bytes that
// are not valid CBOR, trailing bytes, a missing or unknown tag, or a
// body that does not match its tag.
var ErrMalformedPayload = errors.New("malformed payload")

// envelope is the CBOR shape of every payload. Body stays raw until
// Type has selected the Go type to decode it into.
type envelope struct {
	Type string           `cbor:"type"`
	Body codec.RawMessage `cbor:"body,omitempty"`
}

// EncodeCommand serializes a command into a frame payload. Variants are
// passed by value; a nil command or a pointer to a variant is rejected.
func EncodeCommand(command Command) ([]byte, error) {
	if command == nil {
		return nil, errors.New("encoding command: nil command")
	}
	switch command.(type) {
	case Ping, GetGPUInfo:
		return encodeEnvelope(string(command.CommandType()), nil)
	default:
		return nil, fmt.Errorf("encoding command: unsupported type %T", command)
	}
}

// EncodeResponse serializes a response into a frame payload. Variants
// are passed by value; a nil response or a pointer to a variant is
// rejected. Invalid UTF-8 in string fields is replaced with U+FFFD,
// since CBOR text strings must be valid UTF-8.
func EncodeResponse(response Response) ([]byte, error) {
	if response == nil {
		return nil, errors.New("encoding response: nil response")
	}
	tag := string(response.ResponseType())
	switch typed := response.(type) {
	case Pong, Ack:
		return encodeEnvelope(tag, nil)
	case GPUInfo:
		return encodeEnvelope(tag, gpuInfoBody{
			DeviceName:    validText(typed.DeviceName),
			DriverVersion: validText(typed.DriverVersion),
		})
	case Error:
		return encodeEnvelope(tag, errorBody{Message: validText(typed.Message)})
	default:
		return nil, fmt.Errorf("encoding response: unsupported type %T", response)
	}
}

// gpuInfoBody and errorBody pin the body field names independently of
// the json tags on the public types, so renaming a Go field can never
// silently change the wire format.
type gpuInfoBody struct {
	DeviceName    string `cbor:"device_name"`
	DriverVersion string `cbor:"driver_version"`
}

type errorBody struct {
	Message string `cbor:"message"`
}

// validText replaces each run of invalid UTF-8 in s with U+FFFD.
// Device names come from sysfs and firmware and carry no encoding
// guarantee.
func validText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func encodeEnvelope(tag string, body any) ([]byte, error) {
	message := envelope{Type: tag}
	if body != nil {
		raw, err := codec.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", tag, err)
		}
		message.Body = raw
	}
	data, err := codec.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", tag, err)
	}
	return data, nil
}

// DecodeCommand parses a frame payload into a Command. Any failure
// wraps ErrMalformedPayload.
func DecodeCommand(data []byte) (Command, error) {
	message, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch CommandType(message.Type) {
	case CommandPing:
		if err := requireNoBody(message); err != nil {
			return nil, err
		}
		return Ping{}, nil
	case CommandGetGPUInfo:
		if err := requireNoBody(message); err != nil {
			return nil, err
		}
		return GetGPUInfo{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command type %q", ErrMalformedPayload, message.Type)
	}
}

// DecodeResponse parses a frame payload into a Response. Any failure
// wraps ErrMalformedPayload.
func DecodeResponse(data []byte) (Response, error) {
	message, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch ResponseType(message.Type) {
	case ResponsePong:
		if err := requireNoBody(message); err != nil {
			return nil, err
		}
		return Pong{}, nil
	case ResponseAck:
		if err := requireNoBody(message); err != nil {
			return nil, err
		}
		return Ack{}, nil
	case ResponseGPUInfo:
		var body gpuInfoBody
		if err := decodeBody(message, &body); err != nil {
			return nil, err
		}
		return GPUInfo(body), nil
	case ResponseError:
		var body errorBody
		if err := decodeBody(message, &body); err != nil {
			return nil, err
		}
		return Error(body), nil
	default:
		return nil, fmt.Errorf("%w: unknown response type %q", ErrMalformedPayload, message.Type)
	}
}

func decodeEnvelope(data []byte) (envelope, error) {
	var message envelope
	if len(data) == 0 {
		return message, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	if err := codec.Unmarshal(data, &message); err != nil {
		return message, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if message.Type == "" {
		return message, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}
	return message, nil
}

// requireNoBody rejects a body on a variant that has no fields. The
// encoder never writes one, so its presence means the tag and the
// content disagree.
func requireNoBody(message envelope) error {
	if len(message.Body) != 0 {
		return fmt.Errorf("%w: %s carries an unexpected body", ErrMalformedPayload, message.Type)
	}
	return nil
}

// decodeBody decodes the body of a payload-carrying variant. Every
// field is required; an absent field would otherwise decode silently
// as an empty string.
func decodeBody[T gpuInfoBody | errorBody](message envelope, target *T) error {
	if len(message.Body) == 0 {
		return fmt.Errorf("%w: %s is missing its body", ErrMalformedPayload, message.Type)
	}
	var fields map[string]any
	if err := codec.Unmarshal(message.Body, &fields); err != nil {
		return fmt.Errorf("%w: %s body: %v", ErrMalformedPayload, message.Type, err)
	}
	if err := codec.Unmarshal(message.Body, target); err != nil {
		return fmt.Errorf("%w: %s body: %v", ErrMalformedPayload, message.Type, err)
	}
	for _, name := range requiredFields(message.Type) {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: %s body is missing %q", ErrMalformedPayload, message.Type, name)
		}
	}
	return nil
}

func requiredFields(tag string) []string {
	switch ResponseType(tag) {
	case ResponseGPUInfo:
		return []string{"device_name", "driver_version"}
	case ResponseError:
		return []string{"message"}
	}
	return nil
}

// Describe renders a payload in CBOR diagnostic notation for debug
// logging. Bytes that are not CBOR at all are rendered as hex.
func Describe(data []byte) string {
	notation, err := codec.Diagnose(data)
	if err != nil {
		return fmt.Sprintf("h'%x' (%v)", data, err)
	}
	return notation
}
