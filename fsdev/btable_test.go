package fsdev_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embhal/fsdevhal/fsdev"
	"github.com/embhal/fsdevhal/fsdevsim"
)

func newPeripheral(t *testing.T, cfg fsdev.Config) (*fsdev.Peripheral, *fsdevsim.Bus) {
	t.Helper()
	bus, err := fsdevsim.New(cfg, nil)
	require.NoError(t, err)
	p, err := fsdev.New(bus, cfg)
	require.NoError(t, err)
	return p, bus
}

var variants = []struct {
	name string
	cfg  fsdev.Config
}{
	{"512/16-bit stride 2", fsdev.Config{PMASize: 512, Width: fsdev.Halfword16}},
	{"1024/16-bit", fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16}},
	{"2048/32-bit", fsdev.Config{PMASize: 2048, Width: fsdev.Word32}},
}

func TestCountAddrRoundTrip(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			p, _ := newPeripheral(t, v.cfg)
			for ep := 0; ep < fsdev.EndpointCount; ep++ {
				for _, dir := range []fsdev.Dir{fsdev.DirTx, fsdev.DirRx} {
					// 4-byte aligned so the 32-bit layout round-trips too.
					addr := uint16(64 + ep*8)
					count := uint16(ep*37+11) & 0x3FF

					p.SetCount(ep, dir, count)
					p.SetAddr(ep, dir, addr)
					assert.Equal(t, count, p.Count(ep, dir), "count perturbed by address write")
					assert.Equal(t, addr, p.Addr(ep, dir))

					p.SetCount(ep, dir, 0x3FF)
					assert.Equal(t, addr, p.Addr(ep, dir), "address perturbed by count write")
					assert.Equal(t, uint16(0x3FF), p.Count(ep, dir))
				}
			}
		})
	}
}

func TestSlotsIndependent(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			p, _ := newPeripheral(t, v.cfg)
			p.SetTxAddr(1, 0x40)
			p.SetTxCount(1, 8)
			p.SetRxAddr(1, 0x80)
			p.SetRxBufSize(1, 64)

			assert.Equal(t, uint16(0x40), p.TxAddr(1))
			assert.Equal(t, uint16(8), p.TxCount(1))
			assert.Equal(t, uint16(0x80), p.RxAddr(1))
			// Neighboring endpoints untouched.
			assert.Zero(t, p.TxAddr(0))
			assert.Zero(t, p.RxAddr(2))
		})
	}
}

func TestSetAddrAlignment(t *testing.T) {
	p16, _ := newPeripheral(t, fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16})
	p16.SetAddr(0, fsdev.DirTx, 0x3E6)
	assert.Equal(t, uint16(0x3E6), p16.Addr(0, fsdev.DirTx), "16-bit layout takes even addresses as given")

	p32, _ := newPeripheral(t, fsdev.Config{PMASize: 2048, Width: fsdev.Word32})
	p32.SetAddr(0, fsdev.DirTx, 0x3E6)
	assert.Equal(t, uint16(0x3E4), p32.Addr(0, fsdev.DirTx), "32-bit layout forces 4-byte alignment")

	assert.Panics(t, func() { p16.SetAddr(0, fsdev.DirTx, 0x101) })
	assert.Panics(t, func() { p32.SetAddr(0, fsdev.DirRx, 3) })
}

func TestRxBufSizeEncoding(t *testing.T) {
	tests := []struct {
		size      uint16
		field     uint16
		bufBytes  uint16
		numBlocks uint16
	}{
		{size: 0, field: 0x0000, bufBytes: 0, numBlocks: 0},
		{size: 1, field: 0x0400, bufBytes: 2, numBlocks: 1},
		{size: 2, field: 0x0400, bufBytes: 2, numBlocks: 1},
		{size: 61, field: 0x7C00, bufBytes: 62, numBlocks: 31},
		{size: 62, field: 0x7C00, bufBytes: 62, numBlocks: 31},
		{size: 63, field: 0x8400, bufBytes: 64, numBlocks: 2},
		{size: 64, field: 0x8400, bufBytes: 64, numBlocks: 2},
		{size: 65, field: 0x8800, bufBytes: 96, numBlocks: 3},
		{size: 512, field: 0xBC00, bufBytes: 512, numBlocks: 16},
		{size: 1023, field: 0xFC00, bufBytes: 1024, numBlocks: 32},
		{size: 1024, field: 0xFC00, bufBytes: 1024, numBlocks: 32},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			p, _ := newPeripheral(t, v.cfg)
			for _, tt := range tests {
				t.Run(fmt.Sprintf("size %d", tt.size), func(t *testing.T) {
					p.SetRxBufSize(3, tt.size)
					field := p.CountField(3, fsdev.DirRx)
					assert.Equal(t, tt.field, field)

					dec := fsdev.DecodeRxCount(field)
					assert.Equal(t, tt.bufBytes, dec.BufBytes)
					assert.Equal(t, tt.numBlocks, dec.NumBlocks)
				})
			}
		})
	}
}

func TestRxBufSizeRoundsUpWithinGranularity(t *testing.T) {
	p, _ := newPeripheral(t, fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16})
	for size := uint16(0); size <= 1024; size++ {
		p.SetRxBufSize(2, size)
		dec := fsdev.DecodeRxCount(p.CountField(2, fsdev.DirRx))

		gran := uint16(2)
		if size > 62 {
			gran = 32
		}
		require.GreaterOrEqual(t, dec.BufBytes, size, "size %d", size)
		require.Less(t, dec.BufBytes-size, gran, "size %d", size)
		if size%gran == 0 {
			require.Equal(t, size, dec.BufBytes, "exact size %d must not be inflated", size)
		}
	}
}

func TestBufSizeContractViolations(t *testing.T) {
	p, _ := newPeripheral(t, fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16})
	assert.Panics(t, func() { p.SetRxBufSize(0, 1025) })
	// Sizes near the top of the uint16 range would wrap the 16-bit rounding
	// arithmetic; they must still fail fast, not store a bogus encoding.
	assert.Panics(t, func() { p.SetRxBufSize(0, 65505) })
	assert.Panics(t, func() { p.SetRxBufSize(0, 65535) })
	assert.Zero(t, p.CountField(0, fsdev.DirRx), "rejected size must leave the field untouched")
	assert.Panics(t, func() { p.SetCount(0, fsdev.DirTx, 0x400) })
	assert.Panics(t, func() { p.Count(-1, fsdev.DirRx) })
	assert.Panics(t, func() { p.Count(fsdev.EndpointCount, fsdev.DirRx) })
}

func TestFieldWords(t *testing.T) {
	tests := []struct {
		name      string
		cfg       fsdev.Config
		ep        int
		dir       fsdev.Dir
		addrWord  int
		countWord int
	}{
		{"512 ep0 tx", fsdev.Config{PMASize: 512, Width: fsdev.Halfword16}, 0, fsdev.DirTx, 0, 2},
		{"512 ep1 rx", fsdev.Config{PMASize: 512, Width: fsdev.Halfword16}, 1, fsdev.DirRx, 12, 14},
		{"512 base 64 ep0 tx", fsdev.Config{PMASize: 512, BTableBase: 64, Width: fsdev.Halfword16}, 0, fsdev.DirTx, 64, 66},
		{"1024 ep1 tx", fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16}, 1, fsdev.DirTx, 4, 5},
		{"1024 ep7 rx", fsdev.Config{PMASize: 1024, Width: fsdev.Halfword16}, 7, fsdev.DirRx, 30, 31},
		{"2048 ep0 tx", fsdev.Config{PMASize: 2048, Width: fsdev.Word32}, 0, fsdev.DirTx, 0, 0},
		{"2048 ep1 rx", fsdev.Config{PMASize: 2048, Width: fsdev.Word32}, 1, fsdev.DirRx, 3, 3},
		{"2048 base 64 ep1 rx", fsdev.Config{PMASize: 2048, BTableBase: 64, Width: fsdev.Word32}, 1, fsdev.DirRx, 19, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, c := tt.cfg.FieldWords(tt.ep, tt.dir)
			assert.Equal(t, tt.addrWord, a)
			assert.Equal(t, tt.countWord, c)
		})
	}
}

// The received length is recovered by masking to 10 bits no matter which
// encoding produced the upper bits of the field.
func TestCountMasksOutBlockEncoding(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			p, bus := newPeripheral(t, v.cfg)
			p.SetRxBufSize(1, 64)
			require.Equal(t, uint16(0x8400), p.CountField(1, fsdev.DirRx))

			// Hardware writes the literal received length into the low 10
			// bits; inject it directly underneath the driver.
			_, cw := v.cfg.FieldWords(1, fsdev.DirRx)
			if v.cfg.Width == fsdev.Word32 {
				raw := bus.ReadPMA(cw)
				bus.WritePMA(cw, raw&0xFFFF|uint32(0x8400|13)<<16)
			} else {
				bus.WritePMA(cw, uint32(0x8400|13))
			}

			assert.Equal(t, uint16(13), p.RxCount(1))
			assert.Equal(t, uint16(13), p.Count(1, fsdev.DirRx))
		})
	}
}
