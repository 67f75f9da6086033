package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/srozzo/go-sigstream"
)

// Config is the on-disk sigwatch configuration. All fields are optional;
// command-line flags override whatever the file sets.
type Config struct {
	// Signals lists the kinds to watch, by name ("SIGTERM" or "term").
	Signals []string `toml:"signals"`

	// ExitOn lists kinds that end the watch: after logging them sigwatch
	// emulates their default behavior. A second ExitOn signal while the
	// first is being handled exits immediately.
	ExitOn []string `toml:"exit_on"`

	// SelfPipe forces the portable notifier backend.
	SelfPipe bool `toml:"self_pipe"`

	// Quiet suppresses per-signal output on stdout; the log file, when
	// configured, still receives everything.
	Quiet bool `toml:"quiet"`

	Log LogConfig `toml:"log"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

func defaultConfig() Config {
	return Config{
		Signals: []string{"SIGHUP", "SIGUSR1", "SIGUSR2", "SIGWINCH"},
		ExitOn:  []string{"SIGINT", "SIGTERM"},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// loadConfig reads path, or the XDG default location when path is empty.
// A missing default file is not an error; a missing explicit path is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		found, err := xdg.SearchConfigFile("sigwatch/config.toml")
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return cfg, fmt.Errorf("loading %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("loading %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// signalSets resolves the configured names into watch and exit sets. Exit
// kinds are implicitly watched.
func (c Config) signalSets() (watch []sigstream.Signal, exit map[sigstream.Signal]bool, err error) {
	exit = make(map[sigstream.Signal]bool)
	seen := make(map[sigstream.Signal]bool)
	for _, name := range c.Signals {
		s, err := sigstream.ParseSignal(name)
		if err != nil {
			return nil, nil, err
		}
		if !seen[s] {
			seen[s] = true
			watch = append(watch, s)
		}
	}
	for _, name := range c.ExitOn {
		s, err := sigstream.ParseSignal(name)
		if err != nil {
			return nil, nil, err
		}
		exit[s] = true
		if !seen[s] {
			seen[s] = true
			watch = append(watch, s)
		}
	}
	return watch, exit, nil
}
