// Command sigwatch watches a configurable set of OS signals and logs each
// delivery, optionally to a rotating log file. It is both a demonstration
// of the sigstream library and a handy probe when debugging which signals
// a process manager actually sends.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/srozzo/go-sigstream"
	"github.com/srozzo/go-sigstream/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		signals    []string
		exitOn     []string
		selfPipe   bool
		quiet      bool
		list       bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "sigwatch",
		Short: "Watch OS signals and log each delivery",
		Long: `sigwatch registers a set of signals and prints each one as it arrives.
Signals named in --exit-on end the watch: sigwatch logs them, tears down
its registrations and then performs the signal's default behavior. A
second exit signal during teardown exits immediately.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range sigstream.Strings() {
					s, _ := sigstream.ParseSignal(name)
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", name, s.Number())
				}
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("signals") {
				cfg.Signals = signals
			}
			if cmd.Flags().Changed("exit-on") {
				cfg.ExitOn = exitOn
			}
			if selfPipe {
				cfg.SelfPipe = true
			}
			if quiet {
				cfg.Quiet = true
			}
			return watch(cmd.Context(), cfg, cmd.OutOrStdout(), verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: XDG sigwatch/config.toml)")
	cmd.Flags().StringSliceVarP(&signals, "signals", "s", nil, "signals to watch, by name")
	cmd.Flags().StringSliceVar(&exitOn, "exit-on", nil, "signals that end the watch")
	cmd.Flags().BoolVar(&selfPipe, "self-pipe", false, "force the portable self-pipe backend")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress stdout output")
	cmd.Flags().BoolVar(&list, "list", false, "list supported signals and exit")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable library debug logging")
	return cmd
}

func newLogger(cfg Config, stdout io.Writer) *log.Logger {
	var out io.Writer
	switch {
	case cfg.Log.File != "" && cfg.Quiet:
		out = rotatingWriter(cfg.Log)
	case cfg.Log.File != "":
		out = io.MultiWriter(stdout, rotatingWriter(cfg.Log))
	case cfg.Quiet:
		out = io.Discard
	default:
		out = stdout
	}
	return log.New(out, "", log.LstdFlags|log.Lmicroseconds)
}

func rotatingWriter(cfg LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func watch(ctx context.Context, cfg Config, stdout io.Writer, verbose bool) error {
	watchSet, exitSet, err := cfg.signalSets()
	if err != nil {
		return err
	}
	if len(watchSet) == 0 {
		return errors.New("nothing to watch: no signals configured")
	}

	logger := newLogger(cfg, stdout)

	opts := []sigstream.Option{sigstream.WithSignals(watchSet...)}
	if cfg.SelfPipe {
		opts = append(opts, sigstream.WithSelfPipe())
	}
	if verbose {
		opts = append(opts, sigstream.WithDebug(true), sigstream.WithLogger(logger.Printf))
	}

	stream, err := sigstream.New(opts...)
	if err != nil {
		return err
	}
	defer stream.Close()

	logger.Printf("watching %v (pid %d)", watchSet, os.Getpid())

	for {
		sig, err := stream.Next(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, sigstream.ErrInvalidSignal):
			logger.Printf("dropped undecodable delivery: %v", err)
			continue
		case err != nil:
			return err
		}

		logger.Printf("received %v (number %d)", sig, sig.Number())
		if !exitSet[sig] {
			continue
		}

		// Teardown window: release registrations so a second exit signal
		// takes its default path immediately, then hand this one its
		// default behavior too.
		logger.Printf("exiting on %v", sig)
		if err := stream.Close(); err != nil {
			logger.Printf("teardown: %v", err)
		}
		return registry.EmulateDefaultHandler(sig.Number())
	}
}
