package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIFrameBuildParseRoundTrip(t *testing.T) {
	f := &asciiFramer{}
	// Function code 0x2B has a hex letter in it, so the build side actually
	// exercises the upper-case path instead of an all-digit fixture.
	adu, err := f.encode(0xAB, 0x2B, []byte{0xCD, 0xEF})
	require.NoError(t, err)

	require.Equal(t, byte(':'), adu[0])
	require.Equal(t, byte('\r'), adu[len(adu)-2])
	require.Equal(t, byte('\n'), adu[len(adu)-1])

	hexBody := adu[1 : len(adu)-2]
	for _, c := range hexBody {
		assert.False(t, c >= 'a' && c <= 'f', "encoded hex must be upper-case, got %q", hexBody)
	}

	uid, code, data, err := f.decode(adu)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAB, uid)
	assert.Equal(t, byte(0x2B), code)
	assert.Equal(t, []byte{0xCD, 0xEF}, data)
}

func TestASCIIFrameAcceptsLowerAndUpperHex(t *testing.T) {
	f := &asciiFramer{}
	// slave 0xAB, fc 0x03, data 0xCD 0xEF 0x01 0x02, lrc computed to match.
	sum := byte((0xAB + 0x03 + 0xCD + 0xEF + 0x01 + 0x02) & 0xFF)
	lrc := byte(-sum)
	upper := []byte(":AB03CDEF0102" + upperHexString(lrc) + "\r\n")
	lower := []byte(":ab03cdef0102" + lowerHexString(lrc) + "\r\n")

	uidU, codeU, dataU, errU := f.decode(upper)
	uidL, codeL, dataL, errL := f.decode(lower)
	require.NoError(t, errU)
	require.NoError(t, errL)
	assert.Equal(t, uidU, uidL)
	assert.Equal(t, codeU, codeL)
	assert.Equal(t, dataU, dataL)
}

func upperHexString(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}

func lowerHexString(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}

func TestASCIIFrameLRCMismatch(t *testing.T) {
	f := &asciiFramer{}
	// Correct hex body but wrong trailing LRC byte (FF instead of FA).
	adu := []byte(":010300000002FF\r\n")
	_, _, _, err := f.decode(adu)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindLRCMismatch, e.Kind)
}

func TestASCIIFrameMissingFraming(t *testing.T) {
	f := &asciiFramer{}
	_, _, _, err := f.decode([]byte("010300000002FA\r\n")) // missing leading ':'
	require.Error(t, err)
}
