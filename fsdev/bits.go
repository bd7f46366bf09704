package fsdev

// Endpoint control register bits. The layout is identical in both bus
// widths; the 32-bit parts leave the upper half reserved for the registers
// covered here.
const (
	RegCtrRx  uint32 = 1 << 15   // transfer complete, RX; set by hardware, cleared by writing 0
	RegDtogRx uint32 = 1 << 14   // RX data toggle; flips when written as 1
	RegStatRx uint32 = 0x3 << 12 // RX status; each bit flips when written as 1
	RegSetup  uint32 = 1 << 11   // last completed transaction was SETUP; read-only
	RegType   uint32 = 0x3 << 9  // endpoint type
	RegKind   uint32 = 1 << 8    // endpoint kind (dbl-buf for bulk, status-out for control)
	RegCtrTx  uint32 = 1 << 7    // transfer complete, TX; set by hardware, cleared by writing 0
	RegDtogTx uint32 = 1 << 6    // TX data toggle; flips when written as 1
	RegStatTx uint32 = 0x3 << 4  // TX status; each bit flips when written as 1
	RegAddr   uint32 = 0xF       // endpoint address field
)

// Field shifts for the multi-bit fields above.
const (
	statRxShift = 12
	typeShift   = 9
	statTxShift = 4
)

// Write masks. Bits outside a mask are presented to hardware as 0, which
// leaves the toggle bits untouched; the transfer-complete bits clear on a
// written 0, so every merge re-asserts them explicitly.
const (
	epRegMask    = RegCtrRx | RegSetup | RegType | RegKind | RegCtrTx | RegAddr
	epTxDtogMask = RegStatTx | epRegMask
	epRxDtogMask = RegStatRx | epRegMask
	epKindMask   = epRegMask &^ RegKind
)

// EndpointStatus is the 2-bit response state of one endpoint direction.
type EndpointStatus uint8

// Endpoint status values as encoded by hardware.
const (
	StatusDisabled EndpointStatus = 0 // all requests ignored
	StatusStall    EndpointStatus = 1 // requests answered with STALL
	StatusNAK      EndpointStatus = 2 // requests answered with NAK
	StatusValid    EndpointStatus = 3 // endpoint armed for transfer
)

func (s EndpointStatus) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusStall:
		return "stall"
	case StatusNAK:
		return "nak"
	case StatusValid:
		return "valid"
	default:
		return "unknown"
	}
}

// EndpointType is the 2-bit transfer type of one physical endpoint.
type EndpointType uint8

// Endpoint types as encoded by hardware.
const (
	TypeBulk        EndpointType = 0
	TypeControl     EndpointType = 1
	TypeIsochronous EndpointType = 2
	TypeInterrupt   EndpointType = 3
)

func (t EndpointType) String() string {
	switch t {
	case TypeBulk:
		return "bulk"
	case TypeControl:
		return "control"
	case TypeIsochronous:
		return "isochronous"
	case TypeInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Dir selects one half of an endpoint's BTABLE slot. The double-buffer
// slots of the hardware (buffer 0 and buffer 1) alias the TX and RX halves
// respectively, so double-buffered endpoints use the same accessors.
type Dir uint8

const (
	DirTx Dir = 0
	DirRx Dir = 1
)

func (d Dir) String() string {
	if d == DirRx {
		return "rx"
	}
	return "tx"
}
