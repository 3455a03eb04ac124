package modbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigVerify(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid tcp", Config{Mode: ModeTCP, Kind: "tcp", Endpoint: "localhost:502"}, true},
		{"valid serial rtu", Config{Mode: ModeRTU, Kind: "serial", Endpoint: "/dev/ttyUSB0", BaudRate: 9600}, true},
		{"tcp kind wrong mode", Config{Mode: ModeRTU, Kind: "tcp", Endpoint: "x"}, false},
		{"serial kind wrong mode", Config{Mode: ModeTCP, Kind: "serial", Endpoint: "x", BaudRate: 9600}, false},
		{"serial missing baud", Config{Mode: ModeRTU, Kind: "serial", Endpoint: "x"}, false},
		{"missing endpoint", Config{Mode: ModeTCP, Kind: "tcp"}, false},
		{"unknown kind", Config{Mode: ModeTCP, Kind: "udp", Endpoint: "x"}, false},
		{"pdu too large", Config{Mode: ModeTCP, Kind: "tcp", Endpoint: "x", MaxPDUChars: 1000}, false},
		{"static without pools", Config{Mode: ModeTCP, Kind: "tcp", Endpoint: "x", Static: true}, false},
		{"static with pools", Config{Mode: ModeTCP, Kind: "tcp", Endpoint: "x", Static: true, MaxBlocks: 4, MaxPlans: 4}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Verify()
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigMaxPDUCharsDefault(t *testing.T) {
	var cfg Config
	assert.EqualValues(t, maxPDUDataBytes, cfg.maxPDUChars())

	cfg.MaxPDUChars = 64
	assert.EqualValues(t, 64, cfg.maxPDUChars())
}

func TestConfigLatencyCharsDefault(t *testing.T) {
	assert.EqualValues(t, 2, Config{Mode: ModeRTU}.latencyChars())
	assert.EqualValues(t, 2, Config{Mode: ModeASCII}.latencyChars())
	assert.EqualValues(t, 1, Config{Mode: ModeTCP}.latencyChars())
	assert.EqualValues(t, 5, Config{Mode: ModeTCP, LatencyChars: 5}.latencyChars())
}

func TestConfigTimeoutDefault(t *testing.T) {
	var cfg Config
	assert.Equal(t, defaultTimeout, cfg.timeout())

	cfg.Timeout = 250 * time.Millisecond
	assert.Equal(t, 250*time.Millisecond, cfg.timeout())
}
