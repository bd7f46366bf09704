package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/embhal/fsdevhal/fsdev"
	"github.com/embhal/fsdevhal/fsdevsim"
)

// Dump decodes the BTABLE from a raw PMA snapshot file. The snapshot is
// loaded into a simulated bus and read back through the same accessor the
// driver uses, so the dump reflects exactly what the driver would see.
type Dump struct {
	PeripheralFlags `embed:""`
	File            string `arg:"" type:"existingfile" help:"Raw PMA snapshot (USB-local little-endian byte image)"`
	Format          string `help:"Output format" default:"table" enum:"table,yaml"`
}

type dumpEntry struct {
	Endpoint int                 `yaml:"endpoint"`
	TxAddr   uint16              `yaml:"txAddr"`
	TxCount  uint16              `yaml:"txCount"`
	RxAddr   uint16              `yaml:"rxAddr"`
	Rx       fsdev.RxCountFields `yaml:"rx"`
}

// Run is called by Kong when the dump command is executed.
func (d *Dump) Run(logger *slog.Logger) error {
	cfg, err := d.Build()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(d.File)
	if err != nil {
		return err
	}
	logger.Debug("loaded PMA snapshot", "file", d.File, "bytes", len(data))

	bus, err := fsdevsim.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := bus.LoadPMA(data); err != nil {
		return err
	}
	p, err := fsdev.New(bus, cfg)
	if err != nil {
		return err
	}

	var entries []dumpEntry
	for ep := 0; ep < fsdev.EndpointCount; ep++ {
		entries = append(entries, dumpEntry{
			Endpoint: ep,
			TxAddr:   p.TxAddr(ep),
			TxCount:  p.TxCount(ep),
			RxAddr:   p.RxAddr(ep),
			Rx:       fsdev.DecodeRxCount(p.CountField(ep, fsdev.DirRx)),
		})
	}

	if d.Format == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(entries)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "EP\tTX ADDR\tTX COUNT\tRX ADDR\tRX BUF\tRX COUNT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%#04x\t%d\t%#04x\t%d\t%d\n",
			e.Endpoint, e.TxAddr, e.TxCount, e.RxAddr, e.Rx.BufBytes, e.Rx.Count)
	}
	return w.Flush()
}
