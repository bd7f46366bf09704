package fsdev

// Pure decoders over raw register and descriptor values. These perform no
// hardware access; they are shared by the tests and the fsdevctl tooling.

// RegFields is the decoded view of one endpoint control register value.
type RegFields struct {
	Address    uint8          `yaml:"address"`
	Type       EndpointType   `yaml:"-"`
	TypeName   string         `yaml:"type"`
	Kind       bool           `yaml:"kind"`
	Setup      bool           `yaml:"setup"`
	RxComplete bool           `yaml:"rxComplete"`
	TxComplete bool           `yaml:"txComplete"`
	RxDtog     bool           `yaml:"rxDtog"`
	TxDtog     bool           `yaml:"txDtog"`
	RxStatus   EndpointStatus `yaml:"-"`
	RxName     string         `yaml:"rxStatus"`
	TxStatus   EndpointStatus `yaml:"-"`
	TxName     string         `yaml:"txStatus"`
}

// DecodeReg splits an endpoint control register value into named fields.
func DecodeReg(v uint32) RegFields {
	f := RegFields{
		Address:    uint8(v & RegAddr),
		Type:       EndpointType(v >> typeShift & 0x3),
		Kind:       v&RegKind != 0,
		Setup:      v&RegSetup != 0,
		RxComplete: v&RegCtrRx != 0,
		TxComplete: v&RegCtrTx != 0,
		RxDtog:     v&RegDtogRx != 0,
		TxDtog:     v&RegDtogTx != 0,
		RxStatus:   EndpointStatus(v >> statRxShift & 0x3),
		TxStatus:   EndpointStatus(v >> statTxShift & 0x3),
	}
	f.TypeName = f.Type.String()
	f.RxName = f.RxStatus.String()
	f.TxName = f.TxStatus.String()
	return f
}

// RxCountFields is the decoded view of an RX count field: the literal
// received length in the low 10 bits plus the block-encoded buffer
// capacity in the top bits.
type RxCountFields struct {
	// BlockSize32 is the block-size flag: 32-byte blocks when set,
	// 2-byte blocks otherwise.
	BlockSize32 bool `yaml:"blockSize32"`
	// NumBlocks is the decoded number of blocks (the stored field plus the
	// block-size flag).
	NumBlocks uint16 `yaml:"numBlocks"`
	// BufBytes is the allocated buffer capacity in bytes.
	BufBytes uint16 `yaml:"bufBytes"`
	// Count is the literal 10-bit byte count.
	Count uint16 `yaml:"count"`
}

// DecodeRxCount splits an RX count field value.
func DecodeRxCount(v uint16) RxCountFields {
	f := RxCountFields{
		BlockSize32: v&0x8000 != 0,
		NumBlocks:   v >> 10 & 0x1F,
		Count:       v & countMask,
	}
	gran := uint16(2)
	if f.BlockSize32 {
		// The stored field holds numBlocks-1 when 32-byte blocks are used.
		f.NumBlocks++
		gran = 32
	}
	f.BufBytes = f.NumBlocks * gran
	return f
}
