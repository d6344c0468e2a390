// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/neurobridge/bridge"
	"github.com/bureau-foundation/neurobridge/cmd/neuro/cli"
	"github.com/bureau-foundation/neurobridge/lib/config"
	"github.com/bureau-foundation/neurobridge/lib/netutil"
	"github.com/bureau-foundation/neurobridge/lib/process"
	"github.com/bureau-foundation/neurobridge/lib/version"
	"github.com/bureau-foundation/neurobridge/protocol"
)

// socketEnvironmentVariable overrides the default socket path, so a
// container image can point every invocation at a bind-mounted socket.
const socketEnvironmentVariable = "NEUROBRIDGE_SOCKET"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	err := rootCommand(stdout, stderr).Execute(args)
	if err == nil {
		return 0
	}
	// The command already printed its own output.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return process.Report(stderr, err)
}

// connection holds the flags shared by every command that talks to the
// server.
type connection struct {
	socketPath string
	timeout    time.Duration
	verbose    bool
	outputJSON bool
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	defaultSocket := config.DefaultSocketPath
	if fromEnvironment := os.Getenv(socketEnvironmentVariable); fromEnvironment != "" {
		defaultSocket = fromEnvironment
	}
	flagSet.StringVarP(&c.socketPath, "socket", "s", defaultSocket, "bridge server socket (env "+socketEnvironmentVariable+")")
	flagSet.DurationVar(&c.timeout, "timeout", 30*time.Second, "maximum time to wait for the server's answer")
	flagSet.BoolVarP(&c.verbose, "verbose", "v", false, "log connection details to stderr")
	flagSet.BoolVar(&c.outputJSON, "json", false, "output as JSON")
}

func rootCommand(stdout, stderr io.Writer) *cli.Command {
	var showVersion bool
	root := &cli.Command{
		Name: "neuro",
		Description: "Neuro asks the host-side neuro-bridge server about hardware this\n" +
			"environment cannot see directly.",
		Output: stderr,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("neuro", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Subcommands: []*cli.Command{
			pingCommand(stdout, stderr),
			gpuCommand(stdout, stderr),
		},
	}
	root.Run = func(args []string) error {
		if showVersion {
			fmt.Fprintf(stdout, "neuro %s\n", version.Info())
			return nil
		}
		root.PrintHelp(stderr)
		return cli.Validation("command required")
	}
	return root
}

func pingCommand(stdout, stderr io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "ping",
		Summary: "Check that the bridge server is alive",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ping", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Ping the server on its default socket", Command: "neuro ping"},
			{Description: "Ping a server listening elsewhere", Command: "neuro ping --socket /run/neuro/bridge.sock"},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return call(&conn, protocol.Ping{}, stdout, stderr)
		},
	}
}

func gpuCommand(stdout, stderr io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "gpu",
		Summary: "Show the host GPU's name and driver version",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("gpu", pflag.ContinueOnError)
			conn.addFlags(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Query the host GPU", Command: "neuro gpu"},
			{Description: "Machine-readable output", Command: "neuro gpu --json"},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return call(&conn, protocol.GetGPUInfo{}, stdout, stderr)
		},
	}
}

// call sends one command on a fresh connection and renders the answer.
func call(conn *connection, command protocol.Command, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if conn.verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(stderr, level).With("socket", conn.socketPath)

	ctx := context.Background()
	if conn.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conn.timeout)
		defer cancel()
	}

	client := &bridge.Client{SocketPath: conn.socketPath}
	logger.Debug("connecting")
	session, err := client.Dial(ctx)
	if err != nil {
		if diagnosed := cli.DiagnoseDialError(err, conn.socketPath); diagnosed != nil {
			return diagnosed
		}
		return cli.Transient("%w", err)
	}
	defer session.Close()

	start := time.Now()
	response, err := session.Call(ctx, command)
	if err != nil {
		if netutil.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return cli.Transient("%s: no answer from %s within %s", command.CommandType(), conn.socketPath, conn.timeout)
		}
		return cli.Internal("%s: protocol error: %w", command.CommandType(), err)
	}
	logger.Debug("response received",
		"command", command.CommandType(),
		"response", response.ResponseType(),
		"duration", time.Since(start),
	)

	renderer := newRenderer(stdout, stderr, conn.outputJSON)
	return renderer.render(response)
}
