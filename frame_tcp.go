package modbus

import (
	"encoding/binary"
	"sync/atomic"
)

var _ framer = (*tcpFramer)(nil)

// tcpFramer wraps a PDU in the 7-byte MBAP header: transaction id,
// protocol id (always 0), length, and unit id (spec §4.6 "TCP").
type tcpFramer struct {
	transID uint32
}

func (f *tcpFramer) buffer() []byte {
	return make([]byte, 7+2+maxPDUDataBytes)
}

func (f *tcpFramer) encode(uid, code byte, data []byte) (adu []byte, err error) {
	if len(data) > maxPDUDataBytes {
		return nil, newError(KindPDUTooLarge, "tcp pdu data length %d exceeds %d", len(data), maxPDUDataBytes)
	}
	adu = f.buffer()
	binary.BigEndian.PutUint16(adu[0:], uint16(atomic.AddUint32(&f.transID, 1)))
	binary.BigEndian.PutUint16(adu[2:], 0) // protocol id
	binary.BigEndian.PutUint16(adu[4:], uint16(2+len(data)))
	adu[6] = uid
	adu[7] = code
	return adu[:8+copy(adu[8:], data)], nil
}

func (f *tcpFramer) decode(adu []byte) (uid, code byte, data []byte, err error) {
	if len(adu) < 8 {
		return 0, 0, nil, newError(KindInvalidFrame, "tcp adu shorter than mbap header + function code")
	}
	length := binary.BigEndian.Uint16(adu[4:])
	if int(length) != len(adu)-6 {
		return 0, 0, nil, newError(KindInvalidFrame, "tcp length field %d does not match adu size", length)
	}
	if adu[7] >= 0x80 {
		if len(adu) < 9 {
			return 0, 0, nil, newError(KindInvalidFrame, "tcp exception response missing exception code")
		}
		return adu[6], adu[7], nil, Exception(adu[8])
	}
	return adu[6], adu[7], adu[8:], nil
}

func (f *tcpFramer) verify(req, res []byte) error {
	switch {
	case req[0] != res[0] || req[1] != res[1]:
		return newError(KindInvalidFrame, "tcp transaction id mismatch")
	case res[2] != 0 || res[3] != 0:
		return newError(KindInvalidFrame, "tcp protocol id non-zero")
	case req[6] != res[6]:
		return newError(KindInvalidFrame, "tcp unit id mismatch")
	case res[7] != req[7] && res[7] != req[7]|0x80:
		return newError(KindInvalidFrame, "tcp function code mismatch")
	}
	return nil
}
