package fsdev

import "fmt"

// MaxBufSize is the largest buffer capacity the RX count field can encode:
// 32 blocks of 32 bytes.
const MaxBufSize = 1024

// countMask covers the literal byte count in a count field. The bits above
// it hold the block-size/block-count pair on RX halves.
const countMask = 0x3FF

// table hides the physical BTABLE layout difference between the 16-bit and
// 32-bit access schemes behind four primitives per endpoint half.
type table interface {
	count(ep int, dir Dir) uint16
	countField(ep int, dir Dir) uint16
	addr(ep int, dir Dir) uint16
	setAddr(ep int, dir Dir, addr uint16)
	setCount(ep int, dir Dir, n uint16)
	setBlocks(ep int, dir Dir, blockSize, numBlocks uint16)
}

// word16Index is the CPU halfword index of one descriptor field under the
// 16-bit scheme. Each endpoint slot spans four halfwords (TX addr, TX
// count, RX addr, RX count); the 512-byte parts additionally space every
// halfword two apart.
func word16Index(base, stride, ep int, dir Dir, count bool) int {
	half := ep*4 + int(dir)*2
	if count {
		half++
	}
	return (base/2 + half) * stride
}

// word32Index is the word index of one endpoint half's packed
// count/address word under the 32-bit scheme.
func word32Index(base, ep int, dir Dir) int {
	return base/4 + ep*2 + int(dir)
}

// table16 accesses the BTABLE as paired 16-bit halfwords.
type table16 struct {
	bus    Bus
	base   int
	stride int
}

func (t table16) count(ep int, dir Dir) uint16 {
	return t.countField(ep, dir) & countMask
}

func (t table16) countField(ep int, dir Dir) uint16 {
	return uint16(t.bus.ReadPMA(word16Index(t.base, t.stride, ep, dir, true)))
}

func (t table16) addr(ep int, dir Dir) uint16 {
	return uint16(t.bus.ReadPMA(word16Index(t.base, t.stride, ep, dir, false)))
}

func (t table16) setAddr(ep int, dir Dir, addr uint16) {
	t.bus.WritePMA(word16Index(t.base, t.stride, ep, dir, false), uint32(addr))
}

func (t table16) setCount(ep int, dir Dir, n uint16) {
	w := word16Index(t.base, t.stride, ep, dir, true)
	v := uint16(t.bus.ReadPMA(w))
	v = v&^countMask | n&countMask
	t.bus.WritePMA(w, uint32(v))
}

func (t table16) setBlocks(ep int, dir Dir, blockSize, numBlocks uint16) {
	// Stored block count is numBlocks minus the block-size flag, a quirk of
	// the hardware encoding.
	w := word16Index(t.base, t.stride, ep, dir, true)
	t.bus.WritePMA(w, uint32(blockSize)<<15|uint32(numBlocks-blockSize)<<10)
}

// table32 accesses the BTABLE as one packed 32-bit word per endpoint half:
// address in the low half, count in the high half.
type table32 struct {
	bus  Bus
	base int
}

func (t table32) count(ep int, dir Dir) uint16 {
	return t.countField(ep, dir) & countMask
}

func (t table32) countField(ep int, dir Dir) uint16 {
	return uint16(t.bus.ReadPMA(word32Index(t.base, ep, dir)) >> 16)
}

func (t table32) addr(ep int, dir Dir) uint16 {
	return uint16(t.bus.ReadPMA(word32Index(t.base, ep, dir)))
}

func (t table32) setAddr(ep int, dir Dir, addr uint16) {
	// The 32-bit parts require 4-byte aligned buffer addresses.
	w := word32Index(t.base, ep, dir)
	v := t.bus.ReadPMA(w)
	v = v&0xFFFF0000 | uint32(addr&0xFFFC)
	t.bus.WritePMA(w, v)
}

func (t table32) setCount(ep int, dir Dir, n uint16) {
	w := word32Index(t.base, ep, dir)
	v := t.bus.ReadPMA(w)
	v = v&^uint32(countMask<<16) | uint32(n&countMask)<<16
	t.bus.WritePMA(w, v)
}

func (t table32) setBlocks(ep int, dir Dir, blockSize, numBlocks uint16) {
	w := word32Index(t.base, ep, dir)
	v := t.bus.ReadPMA(w)
	v = v&0x0000FFFF | uint32(blockSize)<<31 | uint32(numBlocks-blockSize)<<26
	t.bus.WritePMA(w, v)
}

// alignedBufSize rounds a requested buffer size up to the granularity the
// RX count field can represent: 2-byte blocks for sizes up to 62 bytes,
// 32-byte blocks beyond.
func alignedBufSize(size uint16) (rounded, blockSize, numBlocks uint16) {
	bs := uint16(2)
	var flag uint16
	if size > 62 {
		bs = 32
		flag = 1
	}
	n := (size + bs - 1) / bs
	return n * bs, flag, n
}

// Count returns the literal byte count of one endpoint half, masked to 10
// bits regardless of whether the field currently holds a block encoding.
// For an RX half this is the received length hardware wrote there.
func (p *Peripheral) Count(ep int, dir Dir) uint16 {
	checkEP(ep)
	return p.bt.count(ep, dir)
}

// CountField returns the undecoded 16-bit count field of one endpoint
// half. The low 10 bits are the literal count; on an RX half the top bits
// hold the block-size/block-count buffer capacity encoding (see
// DecodeRxCount).
func (p *Peripheral) CountField(ep int, dir Dir) uint16 {
	checkEP(ep)
	return p.bt.countField(ep, dir)
}

// Addr returns the PMA byte offset of one endpoint half's buffer.
func (p *Peripheral) Addr(ep int, dir Dir) uint16 {
	checkEP(ep)
	return p.bt.addr(ep, dir)
}

// SetAddr sets the PMA byte offset of one endpoint half's buffer. The
// offset must be even; the 32-bit parts additionally force it down to a
// multiple of 4.
func (p *Peripheral) SetAddr(ep int, dir Dir, addr uint16) {
	checkEP(ep)
	if addr%2 != 0 {
		panic(fmt.Sprintf("fsdev: odd buffer address %#x for ep%d %s", addr, ep, dir))
	}
	p.bt.setAddr(ep, dir, addr)
}

// SetCount writes a literal byte count into one endpoint half, preserving
// the address field. Used for TX lengths, and for the second buffer of a
// double-buffered IN endpoint.
func (p *Peripheral) SetCount(ep int, dir Dir, n uint16) {
	checkEP(ep)
	if n > countMask {
		panic(fmt.Sprintf("fsdev: byte count %d exceeds 10-bit field", n))
	}
	p.bt.setCount(ep, dir, n)
}

// SetBufSize writes the buffer capacity of one endpoint half using the
// hardware's block-size/block-count encoding, replacing the whole count
// field. The size is rounded up to the representable granularity; a
// rounded size the encoding cannot hold exactly is a caller bug. Dir is a
// parameter because double-buffered OUT endpoints apply the encoding to
// the TX half as well.
func (p *Peripheral) SetBufSize(ep int, dir Dir, size uint16) {
	checkEP(ep)
	// Reject before rounding: the rounding arithmetic is 16-bit and would
	// wrap for sizes near the top of the range.
	if size > MaxBufSize {
		panic(fmt.Sprintf("fsdev: buffer size %d exceeds %d bytes", size, MaxBufSize))
	}
	rounded, flag, n := alignedBufSize(size)
	gran := uint16(2)
	if flag != 0 {
		gran = 32
	}
	if n*gran != rounded {
		panic(fmt.Sprintf("fsdev: buffer size %d not representable in block encoding", size))
	}
	p.bt.setBlocks(ep, dir, flag, n)
}

// Convenience forms for the common single-buffered layout.

// RxCount returns the received length of endpoint ep.
func (p *Peripheral) RxCount(ep int) uint16 { return p.Count(ep, DirRx) }

// TxCount returns the pending transmit length of endpoint ep.
func (p *Peripheral) TxCount(ep int) uint16 { return p.Count(ep, DirTx) }

// RxAddr returns the RX buffer offset of endpoint ep.
func (p *Peripheral) RxAddr(ep int) uint16 { return p.Addr(ep, DirRx) }

// TxAddr returns the TX buffer offset of endpoint ep.
func (p *Peripheral) TxAddr(ep int) uint16 { return p.Addr(ep, DirTx) }

// SetRxAddr sets the RX buffer offset of endpoint ep.
func (p *Peripheral) SetRxAddr(ep int, addr uint16) { p.SetAddr(ep, DirRx, addr) }

// SetTxAddr sets the TX buffer offset of endpoint ep.
func (p *Peripheral) SetTxAddr(ep int, addr uint16) { p.SetAddr(ep, DirTx, addr) }

// SetTxCount sets the transmit length of endpoint ep.
func (p *Peripheral) SetTxCount(ep int, n uint16) { p.SetCount(ep, DirTx, n) }

// SetRxBufSize arms the RX buffer capacity of endpoint ep.
func (p *Peripheral) SetRxBufSize(ep int, size uint16) { p.SetBufSize(ep, DirRx, size) }
