package modbus

// Function codes supported by the policy table.
const (
	FCReadCoils                  byte = 0x01
	FCReadDiscreteInputs         byte = 0x02
	FCReadHoldingRegisters       byte = 0x03
	FCReadInputRegisters         byte = 0x04
	FCWriteSingleCoil            byte = 0x05
	FCWriteSingleRegister        byte = 0x06
	FCWriteMultipleCoils         byte = 0x0F
	FCWriteMultipleRegisters     byte = 0x10
	FCMaskWriteRegister          byte = 0x16
	FCReadWriteMultipleRegisters byte = 0x17
)

// unitKind distinguishes bit-addressed function codes from
// register-addressed ones for the purpose of data sizing (spec §4.1).
type unitKind int

const (
	unitBit unitKind = iota
	unitRegister
)

// fcPolicy is one row of the function-code policy table (spec §4.1/§3).
type fcPolicy struct {
	fc                 byte
	supportsMerge      bool
	isRead             bool
	reqFixedChars      uint8
	respFixedChars     uint8
	extraUnitCharsX100 uint16
	maxQuantity        uint16
	unit               unitKind
}

// fcPolicyTable is the fixed, read-only registry of per-function-code
// constants. It is small enough (≤10 entries) to scan linearly rather than
// index by a sparse array, per the REDESIGN guidance of the specification.
var fcPolicyTable = [...]fcPolicy{
	{fc: FCReadCoils, supportsMerge: true, isRead: true, reqFixedChars: 6, respFixedChars: 5, extraUnitCharsX100: 12, maxQuantity: 2000, unit: unitBit},
	{fc: FCReadDiscreteInputs, supportsMerge: true, isRead: true, reqFixedChars: 6, respFixedChars: 5, extraUnitCharsX100: 12, maxQuantity: 2000, unit: unitBit},
	{fc: FCReadHoldingRegisters, supportsMerge: true, isRead: true, reqFixedChars: 6, respFixedChars: 5, extraUnitCharsX100: 200, maxQuantity: 125, unit: unitRegister},
	{fc: FCReadInputRegisters, supportsMerge: true, isRead: true, reqFixedChars: 6, respFixedChars: 5, extraUnitCharsX100: 200, maxQuantity: 125, unit: unitRegister},
	{fc: FCWriteSingleCoil, supportsMerge: false, isRead: false, reqFixedChars: 6, respFixedChars: 6, extraUnitCharsX100: 0, maxQuantity: 1, unit: unitBit},
	{fc: FCWriteSingleRegister, supportsMerge: false, isRead: false, reqFixedChars: 6, respFixedChars: 6, extraUnitCharsX100: 0, maxQuantity: 1, unit: unitRegister},
	{fc: FCWriteMultipleCoils, supportsMerge: false, isRead: false, reqFixedChars: 7, respFixedChars: 6, extraUnitCharsX100: 0, maxQuantity: 1968, unit: unitBit},
	{fc: FCWriteMultipleRegisters, supportsMerge: false, isRead: false, reqFixedChars: 7, respFixedChars: 6, extraUnitCharsX100: 0, maxQuantity: 123, unit: unitRegister},
	{fc: FCMaskWriteRegister, supportsMerge: false, isRead: false, reqFixedChars: 8, respFixedChars: 8, extraUnitCharsX100: 0, maxQuantity: 1, unit: unitRegister},
	{fc: FCReadWriteMultipleRegisters, supportsMerge: false, isRead: true, reqFixedChars: 11, respFixedChars: 5, extraUnitCharsX100: 0, maxQuantity: 121, unit: unitRegister},
}

// lookupPolicy returns the policy entry for fc and whether it was found.
func lookupPolicy(fc byte) (fcPolicy, bool) {
	for _, p := range fcPolicyTable {
		if p.fc == fc {
			return p, true
		}
	}
	return fcPolicy{}, false
}

// isValidFC reports whether fc is present in the policy table.
func isValidFC(fc byte) bool {
	_, ok := lookupPolicy(fc)
	return ok
}

// dataBytes applies the unit-size rule of spec §4.1: bit-based function
// codes round a quantity of bits up to whole bytes; register-based
// function codes take two bytes per register.
func dataBytes(fc byte, quantity uint16) uint16 {
	p, ok := lookupPolicy(fc)
	if !ok {
		return 0
	}
	if p.unit == unitBit {
		return (quantity + 7) / 8
	}
	return quantity * 2
}
