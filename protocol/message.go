// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// CommandType is the wire tag of a command variant.
type CommandType string

const (
	// CommandPing asks the server to confirm it is alive.
	CommandPing CommandType = "ping"

	// CommandGetGPUInfo asks the server for the name and driver version
	// of the GPU visible to the host.
	CommandGetGPUInfo CommandType = "get_gpu_info"
)

// ResponseType is the wire tag of a response variant.
type ResponseType string

const (
	ResponsePong    ResponseType = "pong"
	ResponseGPUInfo ResponseType = "gpu_info"
	ResponseError   ResponseType = "error"
	ResponseAck     ResponseType = "ack"
)

// Command is a request sent from client to server. The set of
// implementations is closed: Ping and GetGPUInfo.
type Command interface {
	CommandType() CommandType
	isCommand()
}

// Response is a reply sent from server to client. The set of
// implementations is closed: Pong, GPUInfo, Error, and Ack.
type Response interface {
	ResponseType() ResponseType
	isResponse()
}

// Ping is a liveness check. The server answers with Pong.
type Ping struct{}

// GetGPUInfo requests the primary GPU's identity. The server answers
// with GPUInfo, or Error if the host-side query fails.
type GetGPUInfo struct{}

func (Ping) CommandType() CommandType       { return CommandPing }
func (GetGPUInfo) CommandType() CommandType { return CommandGetGPUInfo }

func (Ping) isCommand()       {}
func (GetGPUInfo) isCommand() {}

// Pong answers Ping.
type Pong struct{}

// GPUInfo describes the GPU the host-side query found.
type GPUInfo struct {
	// DeviceName is the human-readable device name, e.g.
	// "NVIDIA GeForce RTX 4090" or "AMD Radeon RX 7900 XTX".
	DeviceName string `json:"device_name"`

	// DriverVersion is the kernel driver version as reported by the
	// host, e.g. "550.54.14" or "amdgpu 3.57.0".
	DriverVersion string `json:"driver_version"`
}

// Error carries a handler failure back to the client. It is the only
// way a server-side error crosses the wire; transport and framing
// failures end the connection instead.
type Error struct {
	Message string `json:"message"`
}

// Ack acknowledges a command that has no meaningful result. No current
// command produces it.
type Ack struct{}

func (Pong) ResponseType() ResponseType    { return ResponsePong }
func (GPUInfo) ResponseType() ResponseType { return ResponseGPUInfo }
func (Error) ResponseType() ResponseType   { return ResponseError }
func (Ack) ResponseType() ResponseType     { return ResponseAck }

func (Pong) isResponse()    {}
func (GPUInfo) isResponse() {}
func (Error) isResponse()   {}
func (Ack) isResponse()     {}

// Errorf builds an Error response from a format string.
func Errorf(format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...)}
}

// String renders the response the way it is logged.
func (r GPUInfo) String() string {
	return fmt.Sprintf("gpu_info{device_name=%q driver_version=%q}", r.DeviceName, r.DriverVersion)
}

func (r Error) String() string {
	return fmt.Sprintf("error{message=%q}", r.Message)
}
