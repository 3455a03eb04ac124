package modbus

var _ framer = (*rtuFramer)(nil)

// rtuFramer builds and parses binary RTU frames: slave id, function code,
// data, then a little-endian CRC16 trailer (spec §4.6 "RTU").
type rtuFramer struct{}

func (f *rtuFramer) buffer() []byte {
	return make([]byte, 2+maxPDUDataBytes+2)
}

func (f *rtuFramer) encode(uid, code byte, data []byte) (adu []byte, err error) {
	if len(data) > maxPDUDataBytes {
		return nil, newError(KindPDUTooLarge, "rtu pdu data length %d exceeds %d", len(data), maxPDUDataBytes)
	}
	adu = f.buffer()
	adu[0], adu[1] = uid, code
	n := 2 + copy(adu[2:], data)
	crc := crc16Of(adu[:n])
	adu[n] = byte(crc)
	adu[n+1] = byte(crc >> 8)
	return adu[:n+2], nil
}

func (f *rtuFramer) decode(adu []byte) (uid, code byte, data []byte, err error) {
	if len(adu) < 4 {
		return 0, 0, nil, newError(KindInvalidFrame, "rtu adu shorter than slave+function+crc")
	}
	body, trailer := adu[:len(adu)-2], adu[len(adu)-2:]
	want := crc16Of(body)
	got := uint16(trailer[0]) | uint16(trailer[1])<<8
	if want != got {
		return 0, 0, nil, newError(KindCRCMismatch, "rtu crc16 got %#04x want %#04x", got, want)
	}
	if body[1] >= 0x80 {
		if len(body) < 3 {
			return 0, 0, nil, newError(KindInvalidFrame, "rtu exception response missing exception code")
		}
		return body[0], body[1], nil, Exception(body[2])
	}
	return body[0], body[1], body[2:], nil
}

func (f *rtuFramer) verify(req, res []byte) error {
	if req[0] != res[0] {
		return newError(KindInvalidFrame, "rtu slave id mismatch")
	}
	if res[1] != req[1] && res[1] != req[1]|0x80 {
		return newError(KindInvalidFrame, "rtu function code mismatch")
	}
	return nil
}
