package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRCOfKnownFrame(t *testing.T) {
	// slave=0x01, fc=0x03, addr=0x0000, qty=0x0002 -> sum = 0x01+0x03+0x00+0x00+0x00+0x02 = 0x06
	// lrc = two's complement of 0x06 = 0xFA
	body := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x02}
	assert.EqualValues(t, 0xFA, lrcOf(body))
}

func TestLRCRoundTrip(t *testing.T) {
	body := []byte{0x11, 0x03, 0x00, 0x6B, 0x00, 0x03}
	lrc := lrcOf(body)
	assert.EqualValues(t, 0, byte(sum(body))+lrc)
}

func sum(data []byte) byte {
	var s byte
	for _, b := range data {
		s += b
	}
	return s
}
