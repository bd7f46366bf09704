// Package cmd implements the fsdevctl subcommands.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/embhal/fsdevhal/fsdev"
)

// PeripheralFlags are the hardware-variant flags shared by every command
// that needs a concrete Config.
type PeripheralFlags struct {
	PMASize    int    `help:"PMA size in bytes (512, 1024 or 2048)" default:"1024" env:"FSDEV_PMA_SIZE"`
	BTableBase int    `help:"BTABLE base offset in bytes (8-byte aligned)" default:"0" env:"FSDEV_BTABLE_BASE"`
	BusWidth   string `help:"Bus access width in bits" default:"16" enum:"16,32" env:"FSDEV_BUS_WIDTH"`
}

// Build validates the flags into a fsdev.Config.
func (f PeripheralFlags) Build() (fsdev.Config, error) {
	cfg := fsdev.Config{PMASize: f.PMASize, BTableBase: f.BTableBase}
	if f.BusWidth == "32" {
		cfg.Width = fsdev.Word32
	}
	if err := cfg.Validate(); err != nil {
		return fsdev.Config{}, err
	}
	return cfg, nil
}

// parseValue parses a register or field value in decimal, hex (0x) or
// octal (0) notation.
func parseValue(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}
