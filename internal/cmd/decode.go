package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/embhal/fsdevhal/fsdev"
)

// Decode groups the raw-value decoders.
type Decode struct {
	Epreg   DecodeEpreg   `cmd:"" help:"Decode an endpoint control register value"`
	Rxcount DecodeRxcount `cmd:"" help:"Decode an RX count field value"`
}

// DecodeEpreg decodes one endpoint control register value.
type DecodeEpreg struct {
	Value  string `arg:"" help:"Register value (decimal or 0x-prefixed hex)"`
	Format string `help:"Output format" default:"table" enum:"table,yaml"`
}

// Run is called by Kong when the decode epreg command is executed.
func (d *DecodeEpreg) Run(logger *slog.Logger) error {
	v, err := parseValue(d.Value, 32)
	if err != nil {
		return err
	}
	f := fsdev.DecodeReg(uint32(v))
	if d.Format == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(f)
	}
	fmt.Printf("address:     %d\n", f.Address)
	fmt.Printf("type:        %s\n", f.Type)
	fmt.Printf("kind:        %t\n", f.Kind)
	fmt.Printf("setup:       %t\n", f.Setup)
	fmt.Printf("rx: status=%s dtog=%t complete=%t\n", f.RxStatus, f.RxDtog, f.RxComplete)
	fmt.Printf("tx: status=%s dtog=%t complete=%t\n", f.TxStatus, f.TxDtog, f.TxComplete)
	return nil
}

// DecodeRxcount decodes one RX count field value.
type DecodeRxcount struct {
	Value  string `arg:"" help:"Count field value (decimal or 0x-prefixed hex)"`
	Format string `help:"Output format" default:"table" enum:"table,yaml"`
}

// Run is called by Kong when the decode rxcount command is executed.
func (d *DecodeRxcount) Run(logger *slog.Logger) error {
	v, err := parseValue(d.Value, 16)
	if err != nil {
		return err
	}
	f := fsdev.DecodeRxCount(uint16(v))
	if d.Format == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(f)
	}
	block := 2
	if f.BlockSize32 {
		block = 32
	}
	fmt.Printf("buffer: %d blocks of %d bytes = %d bytes\n", f.NumBlocks, block, f.BufBytes)
	fmt.Printf("count:  %d bytes\n", f.Count)
	return nil
}
