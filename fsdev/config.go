package fsdev

import "fmt"

// EndpointCount is the number of physical endpoints of the FSDEV family.
const EndpointCount = 8

// btableBytes is the size of the BTABLE in USB-local bytes: one 8-byte slot
// (TX addr/count + RX addr/count) per endpoint.
const btableBytes = EndpointCount * 8

// BusWidth selects how the CPU accesses the peripheral's registers and
// packet memory. It is fixed per silicon variant and never changes at
// runtime.
type BusWidth uint8

const (
	// Halfword16 accesses registers and PMA as 16-bit halfwords.
	Halfword16 BusWidth = iota
	// Word32 accesses registers and PMA as packed 32-bit words.
	Word32
)

func (w BusWidth) String() string {
	if w == Word32 {
		return "32-bit"
	}
	return "16-bit"
}

// Config describes one FSDEV instance. The supported PMA sizes imply the
// access scheme: 512-byte parts use 16-bit access with a stride of two
// halfwords (every other 16-bit address), 1024-byte parts use contiguous
// 16-bit access, 2048-byte parts use 32-bit access.
type Config struct {
	// PMASize is the packet memory capacity in bytes: 512, 1024 or 2048.
	PMASize int
	// BTableBase is the byte offset of the BTABLE inside the PMA. It must
	// be 8-byte aligned. A non-zero base leaves room below the table for
	// peripherals that share the memory (e.g. CAN).
	BTableBase int
	// Width is the bus access width for this variant.
	Width BusWidth
}

// Stride is the halfword access stride: 2 on the 512-byte parts, where
// only every other 16-bit address is backed by packet memory, 1 otherwise.
func (c Config) Stride() int {
	if c.PMASize == 512 {
		return 2
	}
	return 1
}

// TableBytes is the CPU-side footprint of the BTABLE in bytes, including
// the access-stride holes on the 512-byte parts.
func (c Config) TableBytes() int {
	return btableBytes * c.Stride()
}

// Validate checks the configuration against the hardware constraints.
// Configuration problems are initialization bugs and are reported as
// errors before any register is touched.
func (c Config) Validate() error {
	switch c.PMASize {
	case 512, 1024:
		if c.Width != Halfword16 {
			return fmt.Errorf("PMA size %d requires 16-bit bus access", c.PMASize)
		}
	case 2048:
		if c.Width != Word32 {
			return fmt.Errorf("PMA size %d requires 32-bit bus access", c.PMASize)
		}
	default:
		return fmt.Errorf("unsupported PMA size %d (want 512, 1024 or 2048)", c.PMASize)
	}
	if c.BTableBase%8 != 0 {
		return fmt.Errorf("BTABLE base %d is not 8-byte aligned", c.BTableBase)
	}
	if c.BTableBase < 0 || c.BTableBase+btableBytes > c.PMASize {
		return fmt.Errorf("BTABLE at base %d does not fit in %d bytes of PMA", c.BTableBase, c.PMASize)
	}
	return nil
}

// FieldWords returns the PMA word indices holding the address and count
// fields of one endpoint half under this configuration. In the 32-bit
// layout both fields share one packed word and the two indices are equal.
func (c Config) FieldWords(ep int, dir Dir) (addrWord, countWord int) {
	checkEP(ep)
	if c.Width == Word32 {
		w := word32Index(c.BTableBase, ep, dir)
		return w, w
	}
	return word16Index(c.BTableBase, c.Stride(), ep, dir, false),
		word16Index(c.BTableBase, c.Stride(), ep, dir, true)
}
