package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"file-cache/internal/config"
	"file-cache/internal/logs"
	"file-cache/internal/metrics"
	"file-cache/internal/store"
)

// ringSize bounds the log events kept for the stats command.
const ringSize = 50

// cliOptions holds the parsed command line so tests can call run directly.
type cliOptions struct {
	configPath  string
	showVersion bool
	commit      bool
	args        []string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run executes one subcommand against the configured cache and returns the exit code.
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	if len(opts.args) == 0 {
		printUsage(stdErr)
		return 2
	}

	cmd, ok := commands[opts.args[0]]
	if !ok {
		fmt.Fprintf(stdErr, "unknown command %q\n", opts.args[0])
		printUsage(stdErr)
		return 2
	}
	args := opts.args[1:]
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		fmt.Fprintf(stdErr, "usage: cachectl %s %s\n", opts.args[0], cmd.usage)
		return 2
	}

	if opts.args[0] == "version" {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "load config: %v\n", err)
		return 1
	}

	ring := logs.NewRingHook(ringSize, logrus.TraceLevel)
	logOpts := cfg.LogOptions()
	logOpts.Hooks = append(logOpts.Hooks, ring)

	logger, err := logs.InitLogger(logOpts)
	if err != nil {
		fmt.Fprintf(stdErr, "init logger: %v\n", err)
		return 1
	}
	if cmd.debug && !logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.SetLevel(logrus.DebugLevel)
	}

	registry := metrics.NewRegistry()
	storeOpts := append(cfg.StoreOptions(), store.WithLogger(logger), store.WithMetrics(registry))

	a := &app{
		cache:   store.New[any](storeOpts...),
		metrics: registry,
		ring:    ring,
		out:     stdOut,
	}

	if err := cmd.run(a, args); err != nil {
		fmt.Fprintln(stdErr, err.Error())
		return exitCode(err)
	}

	if opts.commit && cmd.mutates && !cfg.AutoCommit {
		if err := a.cache.Commit(); err != nil {
			fmt.Fprintf(stdErr, "commit: %v\n", err)
			return 1
		}
	}

	fields := logs.Fields(opts.args[0], a.cache.Path())
	fields["args"] = len(args)
	logger.WithFields(fields).Debug("command finished")
	return 0
}

// parseCLIFlags reads global flags; everything after the first positional
// argument belongs to the subcommand.
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := pflag.NewFlagSet("cachectl", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	var (
		configFlag string
		showVer    bool
		commit     bool
	)

	fs.StringVarP(&configFlag, "config", "c", "", "config file (TOML/YAML/JSON, overrides CACHECTL_CONFIG)")
	fs.BoolVar(&showVer, "version", false, "print version and exit")
	fs.BoolVar(&commit, "commit", false, "commit after a mutating command even when auto-commit is off")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("parse flags: %w", err)
	}

	path := os.Getenv(config.EnvPrefix + "_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:  path,
		showVersion: showVer,
		commit:      commit,
		args:        fs.Args(),
	}, nil
}
