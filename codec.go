package modbus

// framer encodes a function-code PDU into a transport-specific ADU, and
// decodes a received ADU back into its PDU, per spec §4.6. Each of the
// three wire modes (RTU, ASCII, TCP) implements this independently.
type framer interface {
	buffer() []byte
	encode(uid, code byte, data []byte) (adu []byte, err error)
	decode(adu []byte) (uid, code byte, data []byte, err error)
	verify(req, res []byte) error
}

// newFramer returns the framer for mode.
func newFramer(mode Mode) framer {
	switch mode {
	case ModeRTU:
		return &rtuFramer{}
	case ModeASCII:
		return &asciiFramer{}
	case ModeTCP:
		return &tcpFramer{}
	}
	return &tcpFramer{}
}

// maxPDUDataBytes bounds the data that follows the function code in one
// PDU, across all three modes: 252 bytes, the 253-byte Modbus PDU limit
// less the function code byte, regardless of transport.
const maxPDUDataBytes = 252
