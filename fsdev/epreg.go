package fsdev

import "fmt"

// Endpoint control register operations. Every mutation is one read-modify-
// write sequence that respects the three bit classes of the register:
// plain read/write bits are merged under epRegMask, toggle bits are only
// ever written as 1 when a flip is intended, and the transfer-complete
// bits are re-asserted as 1 on unrelated writes so a pending completion is
// never acknowledged by accident.

// Reg returns the raw control register of endpoint ep.
func (p *Peripheral) Reg(ep int) uint32 {
	checkEP(ep)
	return p.bus.ReadReg(ep)
}

// SetAddress sets the 4-bit endpoint address field.
func (p *Peripheral) SetAddress(ep int, addr uint8) {
	checkEP(ep)
	if uint32(addr) > RegAddr {
		panic(fmt.Sprintf("fsdev: endpoint address %d exceeds 4-bit field", addr))
	}
	v := p.bus.ReadReg(ep)
	v &= epRegMask &^ RegAddr
	v |= uint32(addr)
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// SetType sets the 2-bit endpoint type field.
func (p *Peripheral) SetType(ep int, t EndpointType) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epRegMask &^ RegType
	v |= uint32(t) << typeShift
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// Type returns the endpoint type field.
func (p *Peripheral) Type(ep int) EndpointType {
	checkEP(ep)
	return EndpointType(p.bus.ReadReg(ep) >> typeShift & 0x3)
}

// SetKind sets the endpoint kind flag (double-buffer for bulk endpoints,
// status-out for control endpoints).
func (p *Peripheral) SetKind(ep int) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v |= RegKind
	v &= epRegMask
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// ClearKind clears the endpoint kind flag.
func (p *Peripheral) ClearKind(ep int) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epKindMask
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// SetTxStatus transitions the TX status field to s. The status bits flip
// on a written 1, so the current value is preserved in the write and the
// target XORed in; hardware then lands on exactly s.
func (p *Peripheral) SetTxStatus(ep int, s EndpointStatus) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epTxDtogMask
	v ^= uint32(s) << statTxShift
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// SetRxStatus transitions the RX status field to s.
func (p *Peripheral) SetRxStatus(ep int, s EndpointStatus) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epRxDtogMask
	v ^= uint32(s) << statRxShift
	v |= RegCtrRx | RegCtrTx
	p.bus.WriteReg(ep, v)
}

// TxStatus returns the TX status field.
func (p *Peripheral) TxStatus(ep int) EndpointStatus {
	checkEP(ep)
	return EndpointStatus(p.bus.ReadReg(ep) >> statTxShift & 0x3)
}

// RxStatus returns the RX status field.
func (p *Peripheral) RxStatus(ep int) EndpointStatus {
	checkEP(ep)
	return EndpointStatus(p.bus.ReadReg(ep) >> statRxShift & 0x3)
}

// ClearRxComplete acknowledges an RX completion: the RX complete flag is
// written as 0 while the TX complete flag is re-asserted so a concurrent
// TX completion is not lost.
func (p *Peripheral) ClearRxComplete(ep int) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epRegMask
	v &^= RegCtrRx
	v |= RegCtrTx
	p.bus.WriteReg(ep, v)
}

// ClearTxComplete acknowledges a TX completion, preserving the RX flag.
func (p *Peripheral) ClearTxComplete(ep int) {
	checkEP(ep)
	v := p.bus.ReadReg(ep)
	v &= epRegMask
	v &^= RegCtrTx
	v |= RegCtrRx
	p.bus.WriteReg(ep, v)
}

// RxComplete reports whether an RX transfer completion is pending.
func (p *Peripheral) RxComplete(ep int) bool {
	checkEP(ep)
	return p.bus.ReadReg(ep)&RegCtrRx != 0
}

// TxComplete reports whether a TX transfer completion is pending.
func (p *Peripheral) TxComplete(ep int) bool {
	checkEP(ep)
	return p.bus.ReadReg(ep)&RegCtrTx != 0
}

// Setup reports whether the last completed transaction on ep was a SETUP.
// The flag is read-only and follows the RX complete flag.
func (p *Peripheral) Setup(ep int) bool {
	checkEP(ep)
	return p.bus.ReadReg(ep)&RegSetup != 0
}

// ToggleRxDtog unconditionally flips the RX data toggle. Double-buffered
// endpoints use the toggles as buffer selectors and flip them directly.
func (p *Peripheral) ToggleRxDtog(ep int) {
	checkEP(ep)
	p.toggle(ep, RegDtogRx)
}

// ToggleTxDtog unconditionally flips the TX data toggle.
func (p *Peripheral) ToggleTxDtog(ep int) {
	checkEP(ep)
	p.toggle(ep, RegDtogTx)
}

// SetRxDtog forces the RX data toggle to bit. The toggle cannot be written
// directly; it is read and flipped only when it differs.
func (p *Peripheral) SetRxDtog(ep int, bit bool) {
	checkEP(ep)
	cur := p.bus.ReadReg(ep)&RegDtogRx != 0
	if cur != bit {
		p.toggle(ep, RegDtogRx)
	}
}

// SetTxDtog forces the TX data toggle to bit.
func (p *Peripheral) SetTxDtog(ep int, bit bool) {
	checkEP(ep)
	cur := p.bus.ReadReg(ep)&RegDtogTx != 0
	if cur != bit {
		p.toggle(ep, RegDtogTx)
	}
}

// RxDtog returns the RX data toggle.
func (p *Peripheral) RxDtog(ep int) bool {
	checkEP(ep)
	return p.bus.ReadReg(ep)&RegDtogRx != 0
}

// TxDtog returns the TX data toggle.
func (p *Peripheral) TxDtog(ep int) bool {
	checkEP(ep)
	return p.bus.ReadReg(ep)&RegDtogTx != 0
}

func (p *Peripheral) toggle(ep int, dtog uint32) {
	v := p.bus.ReadReg(ep)
	v &= epRegMask
	v |= RegCtrRx | RegCtrTx | dtog
	p.bus.WriteReg(ep, v)
}
