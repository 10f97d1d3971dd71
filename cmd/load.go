package cmd

import (
	"fmt"

	"github.com/smazurov/ledcycle/internal/config"
	"github.com/smazurov/ledcycle/internal/led"
	"github.com/smazurov/ledcycle/internal/preset"
)

// setup is everything the subcommands need from a configuration file.
type setup struct {
	opts   *config.Options
	engine config.Engine
	output led.Config
	table  *preset.Table
}

// load reads configFile with the same precedence as the daemon
// (defaults, TOML, environment) and validates the result.
func load(configFile string) (*setup, error) {
	opts := config.DefaultOptions()
	opts.Config = configFile
	if err := config.LoadConfig(opts, nil); err != nil {
		return nil, err
	}

	engine, err := opts.Engine()
	if err != nil {
		return nil, err
	}
	output, err := opts.Output()
	if err != nil {
		return nil, err
	}
	table, err := preset.LoadFile(opts.Config, output.ChannelCount())
	if err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}

	return &setup{opts: opts, engine: engine, output: output, table: table}, nil
}
