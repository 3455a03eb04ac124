package modbus

// Mode selects the wire framing used by a Master and, through it, the gap
// and latency constants the cost model uses to weigh merges.
type Mode int

const (
	// ModeRTU is binary framing over a serial line with CRC16.
	ModeRTU Mode = iota
	// ModeASCII is hex-encoded framing over a serial line with LRC.
	ModeASCII
	// ModeTCP is MBAP-framed Modbus over TCP/IP.
	ModeTCP
)

func (m Mode) String() string {
	switch m {
	case ModeRTU:
		return "rtu"
	case ModeASCII:
		return "ascii"
	case ModeTCP:
		return "tcp"
	}
	return "unknown"
}

// costParams are the cost model inputs for one function code under one
// transport mode (spec §3 "Cost parameters").
type costParams struct {
	reqFixedChars  uint8
	respFixedChars uint8
	gapChars       uint8
	latencyChars   uint8
}

// newCostParams populates cost parameters from the policy of fc and the
// transport mode, per spec §4.2.
func newCostParams(mode Mode, fc byte, latencyChars uint8) costParams {
	p, ok := lookupPolicy(fc)
	if !ok {
		return costParams{}
	}
	params := costParams{
		reqFixedChars:  p.reqFixedChars,
		respFixedChars: p.respFixedChars,
		latencyChars:   latencyChars,
	}
	if mode == ModeRTU || mode == ModeASCII {
		params.gapChars = 4 // 3.5 character times, rounded up
	}
	return params
}

// overheadChars is the character cost of one additional round-trip:
// request and response fixed overhead, the inter-frame gap (RTU/ASCII
// only), and configured latency.
func overheadChars(params costParams) uint16 {
	return uint16(params.reqFixedChars) + uint16(params.respFixedChars) + uint16(params.gapChars) + uint16(params.latencyChars)
}

// gapCost is the character cost of reading gapUnits extra units across a
// gap, by unit type rather than the policy's ×100 scaled field (spec
// §4.2: the scaled field exists for future codecs, the integer rule here
// governs the current computation).
func gapCost(fc byte, gapUnits uint16) uint16 {
	if gapUnits == 0 {
		return 0
	}
	p, ok := lookupPolicy(fc)
	if !ok {
		return 0
	}
	if p.unit == unitBit {
		return (gapUnits + 7) / 8
	}
	return gapUnits * 2
}

// mergeSavings is the signed number of characters saved by merging across
// a gap of gapUnits: positive means merging is strictly beneficial.
// Exactly zero is treated as not beneficial (spec §4.2 boundary policy).
func mergeSavings(gapUnits uint16, fc byte, params costParams) int32 {
	return int32(overheadChars(params)) - int32(gapCost(fc, gapUnits))
}
