package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/embhal/fsdevhal/fsdev"
)

// Layout prints the PMA/BTABLE layout for a peripheral configuration.
type Layout struct {
	PeripheralFlags `embed:""`
	Format          string `help:"Output format" default:"table" enum:"table,yaml"`
}

type layoutReport struct {
	PMASize    int              `yaml:"pmaSize"`
	BTableBase int              `yaml:"btableBase"`
	BusWidth   string           `yaml:"busWidth"`
	Stride     int              `yaml:"stride"`
	TableBytes int              `yaml:"tableBytes"`
	Free       []byteRange      `yaml:"free"`
	Endpoints  []endpointLayout `yaml:"endpoints"`
}

// byteRange is a half-open [Start, End) range of USB-local PMA bytes.
type byteRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// freeRanges returns the PMA regions not occupied by the BTABLE. A
// relocated table leaves a second region below it, available to packet
// buffers or a sharing peripheral.
func freeRanges(cfg fsdev.Config) []byteRange {
	var free []byteRange
	if cfg.BTableBase > 0 {
		free = append(free, byteRange{Start: 0, End: cfg.BTableBase})
	}
	tableEnd := cfg.BTableBase + fsdev.EndpointCount*8
	if tableEnd < cfg.PMASize {
		free = append(free, byteRange{Start: tableEnd, End: cfg.PMASize})
	}
	return free
}

type endpointLayout struct {
	Endpoint    int `yaml:"endpoint"`
	TxAddrWord  int `yaml:"txAddrWord"`
	TxCountWord int `yaml:"txCountWord"`
	RxAddrWord  int `yaml:"rxAddrWord"`
	RxCountWord int `yaml:"rxCountWord"`
}

// Run is called by Kong when the layout command is executed.
func (l *Layout) Run(logger *slog.Logger) error {
	cfg, err := l.Build()
	if err != nil {
		return err
	}
	logger.Debug("computing layout", "pmaSize", cfg.PMASize, "base", cfg.BTableBase, "width", cfg.Width.String())

	rep := layoutReport{
		PMASize:    cfg.PMASize,
		BTableBase: cfg.BTableBase,
		BusWidth:   cfg.Width.String(),
		Stride:     cfg.Stride(),
		TableBytes: cfg.TableBytes(),
		Free:       freeRanges(cfg),
	}
	for ep := 0; ep < fsdev.EndpointCount; ep++ {
		txA, txC := cfg.FieldWords(ep, fsdev.DirTx)
		rxA, rxC := cfg.FieldWords(ep, fsdev.DirRx)
		rep.Endpoints = append(rep.Endpoints, endpointLayout{
			Endpoint: ep, TxAddrWord: txA, TxCountWord: txC, RxAddrWord: rxA, RxCountWord: rxC,
		})
	}

	if l.Format == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(rep)
	}
	fmt.Printf("PMA %d bytes, BTABLE at %d (%s access, stride %d, %d CPU bytes)\n",
		rep.PMASize, rep.BTableBase, rep.BusWidth, rep.Stride, rep.TableBytes)
	for _, r := range rep.Free {
		fmt.Printf("packet buffers: [%d, %d)\n", r.Start, r.End)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "EP\tTX ADDR\tTX COUNT\tRX ADDR\tRX COUNT")
	for _, e := range rep.Endpoints {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", e.Endpoint, e.TxAddrWord, e.TxCountWord, e.RxAddrWord, e.RxCountWord)
	}
	return w.Flush()
}
