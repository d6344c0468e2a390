// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the neuro-bridge server configuration.
//
// Configuration comes from at most one file, named by the
// NEUROBRIDGE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no search path.
// [Default] supplies every value, so the server runs with no file at
// all, and a file only needs the keys it changes.
//
// The format follows the extension: .yaml and .yml are YAML; .json and
// .jsonc are JSON, with comments and trailing commas allowed.
//
// Path fields accept ${VAR} and ${VAR:-default} expansion after
// loading. Environment variables never override a value directly.
//
// This package depends on no other bridge packages.
package config
