package modbus

import "encoding/binary"

// byteCount returns the number of bytes needed to hold bitCount bits,
// rounding up (spec §4.1 unit-size rule for bit-addressed function codes).
func byteCount(bitCount uint16) int {
	return int((bitCount + 7) / 8)
}

// bytesToBools unpacks quantity bits from bytes, least significant bit of
// each byte first, matching the wire encoding of coil/discrete-input
// payloads (spec §6 "Coil payloads pack bits LSB-first within each byte").
func bytesToBools(quantity uint16, bytes []byte) []bool {
	buf := make([]bool, quantity)
	for i, x := range bytes {
		for j := 0; j < 8; j++ {
			k := 8*i + j
			if len(buf) == k {
				return buf
			}
			buf[k] = x&(1<<uint(j)) != 0
		}
	}
	return buf
}

// boolsToBytes packs a slice of bools into a byte slice, least
// significant bit first, the inverse of bytesToBools.
func boolsToBytes(status []bool) []byte {
	buf := make([]byte, byteCount(uint16(len(status))))
	for i, x := range status {
		if x {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	return buf
}

// put assembles a byte slice of the given length from a sequence of
// typed arguments, the same small variadic encoder the teacher's PDU
// builder uses so each function-code encoder reads as one line.
func put(length int, args ...interface{}) []byte {
	new := make([]byte, length)
	buf := new
	for _, arg := range args {
		switch v := arg.(type) {
		case bool:
			buf = putBool(buf, v)
		case byte:
			buf = putByte(buf, v)
		case []byte:
			buf = putByteS(buf, v)
		case uint16:
			buf = putUint16(buf, v)
		}
	}
	return new
}

func putBool(buf []byte, arg bool) []byte {
	if arg {
		return putUint16(buf, 0xFF00)
	}
	return putUint16(buf, 0x0000)
}

func putByte(buf []byte, arg byte) []byte {
	buf[0] = arg
	return buf[1:]
}

func putByteS(buf []byte, args []byte) []byte {
	return buf[copy(buf, args):]
}

func putUint16(buf []byte, arg uint16) []byte {
	binary.BigEndian.PutUint16(buf, arg)
	return buf[2:]
}

// boundCheck validates an address/quantity pair against a function code's
// maximum quantity, returning a KindInvalidQuantity/KindInvalidAddress
// *Error rather than the bool/int pairs scattered through hand parsing.
func boundCheck(address, quantity, max uint16) error {
	if quantity == 0 || quantity > max {
		return newError(KindInvalidQuantity, "quantity %d out of range [1,%d]", quantity, max)
	}
	if uint32(address)+uint32(quantity) > 0x10000 {
		return newError(KindInvalidAddress, "address %d + quantity %d overflows the address space", address, quantity)
	}
	return nil
}
