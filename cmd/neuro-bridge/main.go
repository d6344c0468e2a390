// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/neurobridge/bridge"
	"github.com/bureau-foundation/neurobridge/cmd/neuro/cli"
	"github.com/bureau-foundation/neurobridge/lib/config"
	"github.com/bureau-foundation/neurobridge/lib/hwinfo"
	"github.com/bureau-foundation/neurobridge/lib/hwinfo/amdgpu"
	"github.com/bureau-foundation/neurobridge/lib/hwinfo/nvidia"
	"github.com/bureau-foundation/neurobridge/lib/process"
	"github.com/bureau-foundation/neurobridge/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		process.Fatal(err)
	}
}

// run parses flags, loads configuration, and serves until ctx is
// cancelled.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return runServer(ctx, args, stdout, stderr, nil)
}

// runServer is run with a hook: started, if non-nil, receives the
// Server after it is constructed and before it binds.
func runServer(ctx context.Context, args []string, stdout, stderr io.Writer, started func(*bridge.Server)) error {
	var (
		configPath  string
		socketPath  string
		socketMode  string
		socketGroup string
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("neuro-bridge", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&configPath, "config", "c", "", "configuration file, YAML or JSONC (env "+config.EnvironmentVariable+")")
	flagSet.StringVarP(&socketPath, "socket", "s", "", "socket path (overrides server.socket_path)")
	flagSet.StringVar(&socketMode, "socket-mode", "", "octal socket file mode (overrides server.socket_mode)")
	flagSet.StringVar(&socketGroup, "socket-group", "", "group to own the socket file (overrides server.socket_group)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log every request at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return cli.Validation("%s", err).WithHint("Run 'neuro-bridge --help' for usage.")
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "neuro-bridge %s\n", version.Full())
		return nil
	}
	if flagSet.NArg() > 0 {
		return cli.Validation("unexpected argument: %s", flagSet.Arg(0))
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if flagSet.Changed("socket") {
		cfg.Server.SocketPath = socketPath
	}
	if flagSet.Changed("socket-mode") {
		cfg.Server.SocketMode = socketMode
	}
	if flagSet.Changed("socket-group") {
		cfg.Server.SocketGroup = socketGroup
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	level, _ := cfg.LogLevel()
	mode, _ := cfg.SocketFileMode()
	logger := cli.NewCommandLogger(stderr, level)
	slog.SetDefault(logger)

	querier := hwinfo.NewDeviceQuerier(
		hwinfo.Roots{Sys: cfg.GPU.SysRoot, Proc: cfg.GPU.ProcRoot, Dev: cfg.GPU.DevRoot},
		logger,
		amdgpu.NewProber(),
		nvidia.NewProber(cfg.GPU.ProcRoot),
	)

	server := &bridge.Server{
		SocketPath:  cfg.Server.SocketPath,
		SocketMode:  &mode,
		SocketGroup: cfg.Server.SocketGroup,
		Dispatcher: bridge.NewDispatcher(querier, bridge.Options{
			QueryTimeout: cfg.GPU.QueryTimeout.Std(),
			RateLimit:    cfg.GPU.RateLimit,
			Burst:        cfg.GPU.Burst,
			Logger:       logger,
		}),
		Logger:       logger,
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}
	if started != nil {
		started(server)
	}

	logger.Info("neuro-bridge starting",
		"version", version.Info(),
		"config", configSource(configPath),
		"pid", os.Getpid(),
	)
	return server.Serve(ctx)
}

func configSource(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if fromEnvironment := os.Getenv(config.EnvironmentVariable); fromEnvironment != "" {
		return fromEnvironment
	}
	return "defaults"
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `neuro-bridge - host-side GPU bridge for sandboxed clients

Serves ping and get_gpu_info on a Unix socket until SIGINT or SIGTERM.

Usage:
  neuro-bridge [flags]

Flags:
%s
Examples:
  # Serve on the default socket with default settings
  neuro-bridge

  # Restrict the socket to members of the "render" group
  neuro-bridge --socket-mode 0660 --socket-group render

  # Load settings from a file
  neuro-bridge --config /etc/neurobridge/config.yaml
`, flagSet.FlagUsages())
}
