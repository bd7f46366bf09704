package fsdev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/embhal/fsdevhal/fsdev"
)

func TestDecodeReg(t *testing.T) {
	// addr 5, control, kind, CTR_TX, STAT_RX valid, STAT_TX nak, DTOG_TX.
	v := uint32(0x3000 | 0x200 | 0x100 | 0x80 | 0x40 | 0x20 | 0x5)
	f := fsdev.DecodeReg(v)

	assert.Equal(t, uint8(5), f.Address)
	assert.Equal(t, fsdev.TypeControl, f.Type)
	assert.True(t, f.Kind)
	assert.False(t, f.Setup)
	assert.False(t, f.RxComplete)
	assert.True(t, f.TxComplete)
	assert.False(t, f.RxDtog)
	assert.True(t, f.TxDtog)
	assert.Equal(t, fsdev.StatusValid, f.RxStatus)
	assert.Equal(t, fsdev.StatusNAK, f.TxStatus)
	assert.Equal(t, "control", f.TypeName)
	assert.Equal(t, "valid", f.RxName)
	assert.Equal(t, "nak", f.TxName)
}

func TestDecodeRxCount(t *testing.T) {
	tests := []struct {
		name   string
		v      uint16
		fields fsdev.RxCountFields
	}{
		{"empty", 0x0000, fsdev.RxCountFields{BlockSize32: false, NumBlocks: 0, BufBytes: 0, Count: 0}},
		{"62 bytes small blocks", 0x7C00, fsdev.RxCountFields{BlockSize32: false, NumBlocks: 31, BufBytes: 62, Count: 0}},
		{"64 bytes large blocks", 0x8400, fsdev.RxCountFields{BlockSize32: true, NumBlocks: 2, BufBytes: 64, Count: 0}},
		{"single large block", 0x8000, fsdev.RxCountFields{BlockSize32: true, NumBlocks: 1, BufBytes: 32, Count: 0}},
		{"max buffer", 0xFC00, fsdev.RxCountFields{BlockSize32: true, NumBlocks: 32, BufBytes: 1024, Count: 0}},
		{"count under encoding", 0x8400 | 13, fsdev.RxCountFields{BlockSize32: true, NumBlocks: 2, BufBytes: 64, Count: 13}},
		{"count only", 0x01FF, fsdev.RxCountFields{BlockSize32: false, NumBlocks: 0, BufBytes: 0, Count: 511}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fields, fsdev.DecodeRxCount(tt.v))
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "disabled", fsdev.StatusDisabled.String())
	assert.Equal(t, "stall", fsdev.StatusStall.String())
	assert.Equal(t, "nak", fsdev.StatusNAK.String())
	assert.Equal(t, "valid", fsdev.StatusValid.String())
	assert.Equal(t, "bulk", fsdev.TypeBulk.String())
	assert.Equal(t, "isochronous", fsdev.TypeIsochronous.String())
	assert.Equal(t, "tx", fsdev.DirTx.String())
	assert.Equal(t, "rx", fsdev.DirRx.String())
	assert.Equal(t, "16-bit", fsdev.Halfword16.String())
	assert.Equal(t, "32-bit", fsdev.Word32.String())
}
