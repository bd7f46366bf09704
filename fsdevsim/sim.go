// Package fsdevsim is a software model of the FSDEV peripheral's endpoint
// registers and packet memory.
//
// It implements fsdev.Bus with the silicon's write semantics (toggle bits
// flip on a written 1, the transfer-complete bits clear on a written 0 and
// are only ever set by the simulated hardware) so the driver's
// read-modify-write discipline can be exercised without a device. It backs
// the package tests and the fsdevctl dump command.
package fsdevsim

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/embhal/fsdevhal/fsdev"
	"github.com/embhal/fsdevhal/internal/log"
)

// Bit classes of the endpoint control register, from the simulated
// hardware's point of view.
const (
	rwMask     = fsdev.RegType | fsdev.RegKind | fsdev.RegAddr                          // plain read/write
	toggleMask = fsdev.RegDtogRx | fsdev.RegDtogTx | fsdev.RegStatRx | fsdev.RegStatTx // flip on written 1
	rc0Mask    = fsdev.RegCtrRx | fsdev.RegCtrTx                                       // hardware-set, cleared by written 0
)

// Bus simulates one FSDEV instance. It is not safe for concurrent use,
// matching the single-threaded access model of the real peripheral.
type Bus struct {
	cfg    fsdev.Config
	regs   [fsdev.EndpointCount]uint32
	pma    []uint32 // one entry per bus word
	logger *slog.Logger
}

// New returns a simulated peripheral for cfg. A nil logger disables
// register write tracing.
func New(cfg fsdev.Config, logger *slog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fsdevsim: %w", err)
	}
	words := cfg.PMASize / 2 * cfg.Stride()
	if cfg.Width == fsdev.Word32 {
		words = cfg.PMASize / 4
	}
	return &Bus{cfg: cfg, pma: make([]uint32, words), logger: logger}, nil
}

// Config returns the simulated peripheral's configuration.
func (b *Bus) Config() fsdev.Config { return b.cfg }

// ReadReg implements fsdev.Bus.
func (b *Bus) ReadReg(ep int) uint32 {
	return b.regs[ep]
}

// WriteReg implements fsdev.Bus, applying the hardware write semantics per
// bit class. Clearing the RX complete flag also clears the SETUP flag, as
// the silicon does when a SETUP completion is acknowledged.
func (b *Bus) WriteReg(ep int, v uint32) {
	old := b.regs[ep]
	next := v & rwMask
	next |= (old ^ v) & toggleMask
	next |= old & v & rc0Mask
	if next&fsdev.RegCtrRx != 0 {
		next |= old & fsdev.RegSetup
	}
	b.regs[ep] = next
	if b.logger != nil {
		b.logger.Log(context.Background(), log.LevelTrace, "epreg write",
			"ep", ep, "written", fmt.Sprintf("%#06x", v), "result", fmt.Sprintf("%#06x", next))
	}
}

// ReadPMA implements fsdev.Bus.
func (b *Bus) ReadPMA(word int) uint32 {
	return b.pma[word]
}

// WritePMA implements fsdev.Bus.
func (b *Bus) WritePMA(word int, v uint32) {
	if b.cfg.Width != fsdev.Word32 {
		v &= 0xFFFF
	}
	b.pma[word] = v
}

// CompleteRx simulates hardware finishing an OUT transfer on ep: the RX
// complete flag is set and the RX status drops to NAK.
func (b *Bus) CompleteRx(ep int) {
	b.regs[ep] |= fsdev.RegCtrRx
	b.regs[ep] = b.regs[ep]&^fsdev.RegStatRx | uint32(fsdev.StatusNAK)<<12
}

// CompleteTx simulates hardware finishing an IN transfer on ep.
func (b *Bus) CompleteTx(ep int) {
	b.regs[ep] |= fsdev.RegCtrTx
	b.regs[ep] = b.regs[ep]&^fsdev.RegStatTx | uint32(fsdev.StatusNAK)<<4
}

// RaiseSetup simulates hardware completing a SETUP transaction on ep.
func (b *Bus) RaiseSetup(ep int) {
	b.regs[ep] |= fsdev.RegSetup
	b.CompleteRx(ep)
}

// LoadPMA loads a raw packet-memory snapshot. The snapshot is the USB-local
// byte image (little-endian, contiguous); it is spread across the CPU word
// space according to the configured width and stride.
func (b *Bus) LoadPMA(data []byte) error {
	if len(data) > b.cfg.PMASize {
		return fmt.Errorf("fsdevsim: snapshot is %d bytes, PMA holds %d", len(data), b.cfg.PMASize)
	}
	if len(data)%2 != 0 {
		return fmt.Errorf("fsdevsim: snapshot length %d is not word aligned", len(data))
	}
	if b.cfg.Width == fsdev.Word32 {
		for i := 0; i+4 <= len(data); i += 4 {
			b.pma[i/4] = binary.LittleEndian.Uint32(data[i:])
		}
		if len(data)%4 != 0 {
			b.pma[len(data)/4] = uint32(binary.LittleEndian.Uint16(data[len(data)-2:]))
		}
		return nil
	}
	stride := b.cfg.Stride()
	for i := 0; i+2 <= len(data); i += 2 {
		b.pma[i/2*stride] = uint32(binary.LittleEndian.Uint16(data[i:]))
	}
	return nil
}
