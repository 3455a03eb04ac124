package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsRecordOptimize(t *testing.T) {
	var s Stats

	s.recordOptimize(6, optimizeResult{plans: []Plan{{}}, blocksIn: 2, blocksOut: 1})
	snap := s.snapshot()
	assert.EqualValues(t, 1, snap.OptimizedRequests)
	assert.EqualValues(t, 5, snap.RoundsSaved) // 6 addresses -> 1 plan
	assert.EqualValues(t, 1, snap.BlocksMerged)
}

func TestStatsRecordOptimizeSingleRunNoCredit(t *testing.T) {
	var s Stats
	// Only one distinct run requested (blocksIn == 1): no rounds saved or
	// blocks merged credit, per the Open Question resolution.
	s.recordOptimize(3, optimizeResult{plans: []Plan{{}}, blocksIn: 1, blocksOut: 1})
	snap := s.snapshot()
	assert.EqualValues(t, 0, snap.RoundsSaved)
	assert.EqualValues(t, 0, snap.BlocksMerged)
}

func TestStatsRecordFrameAndReset(t *testing.T) {
	var s Stats
	s.recordFrame(10, 20)
	s.recordFrame(5, 15)
	snap := s.snapshot()
	assert.EqualValues(t, 2, snap.TotalRequests)
	assert.EqualValues(t, 15, snap.TotalCharsSent)
	assert.EqualValues(t, 35, snap.TotalCharsRecv)

	s.reset()
	snap = s.snapshot()
	assert.EqualValues(t, 0, snap.TotalRequests)
}
