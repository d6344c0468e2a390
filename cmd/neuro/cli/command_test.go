// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name:   "neuro",
		Output: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "ping", Run: func([]string) error { called = "ping"; return nil }},
			{Name: "gpu", Run: func([]string) error { called = "gpu"; return nil }},
		},
	}

	if err := root.Execute([]string{"gpu"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "gpu" {
		t.Errorf("dispatched to %q, want gpu", called)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var socket string
	var received []string
	root := &Command{
		Name:   "neuro",
		Output: &bytes.Buffer{},
		Subcommands: []*Command{{
			Name: "ping",
			Flags: func() *pflag.FlagSet {
				flagSet := pflag.NewFlagSet("ping", pflag.ContinueOnError)
				flagSet.StringVar(&socket, "socket", "/default.sock", "socket path")
				return flagSet
			},
			Run: func(args []string) error {
				received = args
				return nil
			},
		}},
	}

	if err := root.Execute([]string{"ping", "--socket", "/tmp/x.sock", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if socket != "/tmp/x.sock" {
		t.Errorf("socket = %q", socket)
	}
	if len(received) != 1 || received[0] != "extra" {
		t.Errorf("args = %v, want [extra]", received)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name:        "neuro",
		Output:      &bytes.Buffer{},
		Subcommands: []*Command{{Name: "ping", Run: func([]string) error { return nil }}},
	}

	err := root.Execute([]string{"pnig"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Fatalf("got %v, want a validation ToolError", err)
	}
	if !strings.Contains(err.Error(), `did you mean "ping"`) {
		t.Errorf("error = %q, want a suggestion", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name:   "ping",
		Output: &bytes.Buffer{},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ping", pflag.ContinueOnError)
			flagSet.String("socket", "", "socket path")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--sockte", "x"})
	if err == nil {
		t.Fatal("Execute accepted an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --socket?") {
		t.Errorf("error = %q, want a --socket suggestion", err)
	}
}

func TestExecuteSubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "neuro",
		Output:      &help,
		Subcommands: []*Command{{Name: "ping", Summary: "check liveness"}},
	}

	if err := root.Execute(nil); err == nil {
		t.Error("Execute with no command succeeded")
	}
	if !strings.Contains(help.String(), "check liveness") {
		t.Errorf("help output missing command listing:\n%s", help.String())
	}
}

func TestExecuteHelp(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "neuro",
		Description: "Query the host bridge.",
		Output:      &help,
		Subcommands: []*Command{{
			Name:    "gpu",
			Summary: "show the host GPU",
			Flags: func() *pflag.FlagSet {
				flagSet := pflag.NewFlagSet("gpu", pflag.ContinueOnError)
				flagSet.Bool("json", false, "output as JSON")
				return flagSet
			},
			Examples: []Example{{Description: "Query the GPU", Command: "neuro gpu"}},
			Run:      func([]string) error { t.Error("Run called for --help"); return nil },
		}},
	}

	if err := root.Execute([]string{"gpu", "--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	output := help.String()
	for _, want := range []string{"Usage:\n  neuro gpu [flags]", "--json", "# Query the GPU"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestExecuteRootRunWithFlags(t *testing.T) {
	showVersion := false
	root := &Command{
		Name:   "neuro",
		Output: &bytes.Buffer{},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("neuro", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version")
			return flagSet
		},
		Run:         func([]string) error { return nil },
		Subcommands: []*Command{{Name: "ping", Run: func([]string) error { return nil }}},
	}

	if err := root.Execute([]string{"--version"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !showVersion {
		t.Error("--version was not parsed by the root command")
	}
}
