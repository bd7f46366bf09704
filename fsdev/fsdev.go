// Package fsdev drives the endpoint registers and Buffer Descriptor Table
// of the FSDEV full-speed USB device peripheral.
//
// The peripheral exposes one 16- or 32-bit control register per physical
// endpoint and a dedicated Packet Memory Area (PMA) holding the Buffer
// Descriptor Table (BTABLE) and the packet buffers themselves. Several
// register bits do not behave like plain flags: the data-toggle and status
// bits flip when written as 1, and the transfer-complete bits clear when
// written as 0. This package encapsulates the read-modify-write sequences
// those semantics require, so callers never compose raw register values.
//
// All hardware access goes through the Bus interface. On real silicon the
// implementation is a memory-mapped view supplied by the platform HAL; the
// fsdevsim package provides a software model for tests and offline tooling.
package fsdev

import (
	"errors"
	"fmt"
)

// Bus is the access port to the peripheral's registers and packet memory.
// Every read and write the driver performs goes through this interface, so
// there is exactly one auditable hardware access path.
type Bus interface {
	// ReadReg returns the control register of endpoint ep.
	ReadReg(ep int) uint32

	// WriteReg writes the control register of endpoint ep. Hardware applies
	// the FSDEV write semantics: toggle bits flip when written as 1, the
	// transfer-complete bits clear when written as 0.
	WriteReg(ep int, v uint32)

	// ReadPMA returns the packet-memory word at the given word index.
	// Words are 16 bits wide under Halfword16 and 32 bits under Word32;
	// 16-bit values are returned in the low half.
	ReadPMA(word int) uint32

	// WritePMA writes the packet-memory word at the given word index.
	WritePMA(word int, v uint32)
}

// Peripheral performs endpoint operations against one FSDEV instance.
// It owns no state besides the configuration: every operation is a direct,
// synchronous access through the Bus. The caller is responsible for not
// mutating the same endpoint concurrently from thread and interrupt
// context.
type Peripheral struct {
	bus Bus
	cfg Config
	bt  table
}

// New validates cfg and returns a Peripheral driving the given bus.
func New(bus Bus, cfg Config) (*Peripheral, error) {
	if bus == nil {
		return nil, errors.New("fsdev: nil bus")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fsdev: %w", err)
	}
	p := &Peripheral{bus: bus, cfg: cfg}
	if cfg.Width == Word32 {
		p.bt = table32{bus: bus, base: cfg.BTableBase}
	} else {
		p.bt = table16{bus: bus, base: cfg.BTableBase, stride: cfg.Stride()}
	}
	return p, nil
}

// Config returns the configuration the Peripheral was created with.
func (p *Peripheral) Config() Config { return p.cfg }

// checkEP guards the endpoint index contract. An index outside the
// peripheral's endpoint range is a caller bug; clamping it would silently
// desynchronize the software's notion of the layout from the hardware's.
func checkEP(ep int) {
	if ep < 0 || ep >= EndpointCount {
		panic(fmt.Sprintf("fsdev: endpoint index %d out of range [0,%d)", ep, EndpointCount))
	}
}
