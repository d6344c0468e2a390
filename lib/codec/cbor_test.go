// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// sampleBody is a representative variant body using cbor struct tags.
type sampleBody struct {
	DeviceName    string `cbor:"device_name"`
	DriverVersion string `cbor:"driver_version"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleBody{
		DeviceName:    "AMD Radeon RX 7900 XTX",
		DriverVersion: "amdgpu 3.57.0",
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleBody
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Map iteration order is random in Go; the encoder must still sort.
	value := map[string]any{"type": "gpu_info", "body": map[string]any{"b": 1, "a": 2}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var body sampleBody
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &body); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	data, err := Marshal("ping")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data = append(data, 0x00)

	var decoded string
	if err := Unmarshal(data, &decoded); err == nil {
		t.Error("Unmarshal should reject extraneous bytes after the data item")
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"type": "ping", "type": "pong"} hand-encoded: map(2), text(4)
	// "type", text(4) "ping", text(4) "type", text(4) "pong".
	data := []byte{
		0xa2,
		0x64, 't', 'y', 'p', 'e', 0x64, 'p', 'i', 'n', 'g',
		0x64, 't', 'y', 'p', 'e', 0x64, 'p', 'o', 'n', 'g',
	}

	var decoded map[string]string
	if err := Unmarshal(data, &decoded); err == nil {
		t.Errorf("Unmarshal accepted duplicate map key, got %v", decoded)
	}
}

func TestUnmarshalRejectsIndefiniteLength(t *testing.T) {
	// Indefinite-length text string: 0x7f, chunk "ab", break.
	data := []byte{0x7f, 0x62, 'a', 'b', 0xff}

	var decoded string
	if err := Unmarshal(data, &decoded); err == nil {
		t.Errorf("Unmarshal accepted indefinite-length item, got %q", decoded)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"type": "get_gpu_info"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"type"`) {
		t.Errorf("notation %q does not contain \"type\"", notation)
	}
	if !strings.Contains(notation, `"get_gpu_info"`) {
		t.Errorf("notation %q does not contain \"get_gpu_info\"", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	body := sampleBody{DeviceName: "Mock GPU", DriverVersion: "1.2.3"}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(body)
	}
}
