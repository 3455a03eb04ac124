package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverheadChars(t *testing.T) {
	// Seed scenario 1/2: RTU, FC03, latency=2 -> overhead 17.
	params := newCostParams(ModeRTU, FCReadHoldingRegisters, 2)
	assert.EqualValues(t, 17, overheadChars(params))

	// Seed scenario 5: TCP, FC03, latency=1 -> overhead 12.
	params = newCostParams(ModeTCP, FCReadHoldingRegisters, 1)
	assert.EqualValues(t, 12, overheadChars(params))
}

func TestGapCostRegisters(t *testing.T) {
	assert.EqualValues(t, 24, gapCost(FCReadHoldingRegisters, 12)) // scenario 1: 12 regs
	assert.EqualValues(t, 4, gapCost(FCReadHoldingRegisters, 2))   // scenario 2: 2 regs
	assert.EqualValues(t, 0, gapCost(FCReadHoldingRegisters, 0))
}

func TestGapCostBits(t *testing.T) {
	assert.EqualValues(t, 2, gapCost(FCReadCoils, 16)) // scenario 3: 16 coils = 2 bytes
}

func TestMergeSavingsBoundary(t *testing.T) {
	// Scenario 1: tight merge rejected, savings negative.
	params := newCostParams(ModeRTU, FCReadHoldingRegisters, 2)
	assert.True(t, mergeSavings(12, FCReadHoldingRegisters, params) < 0)

	// Scenario 2: small gap merge accepted, savings positive.
	assert.True(t, mergeSavings(2, FCReadHoldingRegisters, params) > 0)

	// Scenario 5: TCP overhead 12; gap 5 regs=10B merges (savings=2), gap
	// 6 regs=12B does not (savings=0, treated as not beneficial).
	tcpParams := newCostParams(ModeTCP, FCReadHoldingRegisters, 1)
	assert.EqualValues(t, 2, mergeSavings(5, FCReadHoldingRegisters, tcpParams))
	assert.EqualValues(t, 0, mergeSavings(6, FCReadHoldingRegisters, tcpParams))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "rtu", ModeRTU.String())
	assert.Equal(t, "ascii", ModeASCII.String())
	assert.Equal(t, "tcp", ModeTCP.String())
}
