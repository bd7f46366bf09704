// Package config defines the CLI structure and configuration for fsdevctl.
package config

import (
	"github.com/embhal/fsdevhal/internal/cmd"
)

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"FSDEV_LOG_LEVEL"`
	File  string `help:"Log file path (default: none; logs only to console)" env:"FSDEV_LOG_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log    `embed:"" prefix:"log."`
	Config string `help:"Path to a config file (JSON, YAML or TOML)" env:"FSDEV_CONFIG" type:"path"`

	Layout cmd.Layout `cmd:"" help:"Print the PMA/BTABLE layout for a configuration"`
	Decode cmd.Decode `cmd:"" help:"Decode raw FSDEV register and descriptor values"`
	Dump   cmd.Dump   `cmd:"" help:"Decode the BTABLE from a raw PMA snapshot"`
}
