package modbus

import "encoding/hex"

var _ framer = (*asciiFramer)(nil)

// asciiFramer builds and parses Modbus ASCII frames: a leading ':', the
// slave id, function code and data hex-encoded two characters per byte,
// an LRC trailer, and a trailing CRLF (spec §4.6 "ASCII").
type asciiFramer struct{}

func (f *asciiFramer) buffer() []byte {
	// ':' + hex(uid+code+data+lrc) + CRLF
	return make([]byte, 1+2*(2+maxPDUDataBytes+1)+2)
}

func (f *asciiFramer) encode(uid, code byte, data []byte) (adu []byte, err error) {
	if len(data) > maxPDUDataBytes {
		return nil, newError(KindPDUTooLarge, "ascii pdu data length %d exceeds %d", len(data), maxPDUDataBytes)
	}
	body := make([]byte, 0, 2+len(data)+1)
	body = append(body, uid, code)
	body = append(body, data...)
	body = append(body, lrcOf(body))

	adu = f.buffer()
	adu[0] = ':'
	n := 1 + hex.Encode(adu[1:], body)
	upperHex(adu[1:n])
	adu[n], adu[n+1] = '\r', '\n'
	return adu[:n+2], nil
}

// upperHex uppercases the 'a'-'f' digits encoding/hex emits in place, per
// spec.md §4.6's requirement that built ASCII frames use upper-case hex.
func upperHex(b []byte) {
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - ('a' - 'A')
		}
	}
}

func (f *asciiFramer) decode(adu []byte) (uid, code byte, data []byte, err error) {
	if len(adu) < 1+2*3+2 || adu[0] != ':' || adu[len(adu)-2] != '\r' || adu[len(adu)-1] != '\n' {
		return 0, 0, nil, newError(KindInvalidFrame, "ascii adu missing ':' or crlf framing")
	}
	hexBody := adu[1 : len(adu)-2]
	if len(hexBody)%2 != 0 {
		return 0, 0, nil, newError(KindInvalidFrame, "ascii body has an odd number of hex characters")
	}
	body := make([]byte, len(hexBody)/2)
	if _, err := hex.Decode(body, hexBody); err != nil {
		return 0, 0, nil, newError(KindInvalidFrame, "ascii body is not valid hex: %v", err)
	}
	if len(body) < 3 {
		return 0, 0, nil, newError(KindInvalidFrame, "ascii adu shorter than slave+function+lrc")
	}

	payload, trailer := body[:len(body)-1], body[len(body)-1]
	want := lrcOf(payload)
	if want != trailer {
		return 0, 0, nil, newError(KindLRCMismatch, "ascii lrc got %#02x want %#02x", trailer, want)
	}
	if payload[1] >= 0x80 {
		if len(payload) < 3 {
			return 0, 0, nil, newError(KindInvalidFrame, "ascii exception response missing exception code")
		}
		return payload[0], payload[1], nil, Exception(payload[2])
	}
	return payload[0], payload[1], payload[2:], nil
}

func (f *asciiFramer) verify(req, res []byte) error {
	reqUID, reqCode, _, _ := f.decode(req)
	resUID, resCode, _, resErr := f.decode(res)
	if _, isException := resErr.(Exception); resErr != nil && !isException {
		return resErr
	}
	if reqUID != resUID {
		return newError(KindInvalidFrame, "ascii slave id mismatch")
	}
	if resCode != reqCode && resCode != reqCode|0x80 {
		return newError(KindInvalidFrame, "ascii function code mismatch")
	}
	return nil
}
