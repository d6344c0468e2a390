// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/neurobridge/cmd/neuro/cli"
	"github.com/bureau-foundation/neurobridge/protocol"
)

// renderer prints responses. Styling is applied only when the target
// is a terminal, so piped output is the plain text scripts expect.
type renderer struct {
	stdout, stderr io.Writer
	outputJSON     bool

	heading lipgloss.Style
	label   lipgloss.Style
	failure lipgloss.Style
}

func newRenderer(stdout, stderr io.Writer, outputJSON bool) *renderer {
	r := &renderer{
		stdout:     stdout,
		stderr:     stderr,
		outputJSON: outputJSON,
		heading:    lipgloss.NewStyle(),
		label:      lipgloss.NewStyle(),
		failure:    lipgloss.NewStyle(),
	}
	if cli.IsTerminal(stdout) {
		styled := lipgloss.NewRenderer(stdout)
		r.heading = styled.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		r.label = styled.NewStyle().Faint(true)
	}
	if cli.IsTerminal(stderr) {
		r.failure = lipgloss.NewRenderer(stderr).NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	}
	return r
}

// render prints response. An Error response goes to stderr and yields
// an ExitError so the process exits 1 without a second message.
func (r *renderer) render(response protocol.Response) error {
	if failure, ok := response.(protocol.Error); ok {
		fmt.Fprintf(r.stderr, "%s %s\n", r.failure.Render("Server Error:"), failure.Message)
		return &cli.ExitError{Code: 1}
	}
	if r.outputJSON {
		return r.renderJSON(response)
	}

	switch typed := response.(type) {
	case protocol.Pong:
		fmt.Fprintln(r.stdout, r.heading.Render("Pong! Server is alive."))
	case protocol.GPUInfo:
		fmt.Fprintln(r.stdout, r.heading.Render("GPU Detected via Bridge!"))
		fmt.Fprintf(r.stdout, "   %s %s\n", r.label.Render("Device:"), typed.DeviceName)
		fmt.Fprintf(r.stdout, "   %s %s\n", r.label.Render("Driver:"), typed.DriverVersion)
	default:
		fmt.Fprintf(r.stdout, "Received: %s\n", response.ResponseType())
	}
	return nil
}

func (r *renderer) renderJSON(response protocol.Response) error {
	var value any
	switch typed := response.(type) {
	case protocol.Pong:
		value = struct {
			Alive bool `json:"alive"`
		}{Alive: true}
	case protocol.GPUInfo:
		value = typed
	default:
		value = struct {
			Type protocol.ResponseType `json:"type"`
		}{Type: response.ResponseType()}
	}
	encoder := json.NewEncoder(r.stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return cli.Internal("writing JSON output: %w", err)
	}
	return nil
}
