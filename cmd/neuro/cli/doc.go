// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework shared by the neuro binaries.
//
// A [Command] tree dispatches on the first positional argument, parses
// flags with pflag, and renders structured help. Typos in command and
// flag names get "did you mean" suggestions.
//
// Commands report failure by returning an error. [ToolError] attaches
// a category and an optional hint; [DiagnoseDialError] turns a failure
// to reach the bridge socket into one. [ExitError] asks for a non-zero
// exit status after the command has already written its own output.
package cli
