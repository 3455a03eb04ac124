package modbus

// ReadRequest is the user-facing declaration of desired addresses: a
// single slave and function code, with possibly unsorted, duplicated, or
// non-contiguous addresses (spec §3 "Read request").
type ReadRequest struct {
	SlaveID      byte
	FunctionCode byte
	Addresses    []uint16
}

// Plan is one request the planner decided to issue: a single round-trip
// covering [StartAddress, StartAddress+Quantity) (spec §3 "Request plan").
type Plan struct {
	SlaveID                byte
	FunctionCode           byte
	StartAddress           uint16
	Quantity               uint16
	ExpectedResponseLength int
}

// scatterLoc records, for one user-requested address, which plan will
// carry it and the address's offset within that plan's response so the
// decoded value can be written back to the caller's output slice in the
// address's original position (spec §4.7).
type scatterLoc struct {
	planIndex int
	offset    uint16
}

// optimizeResult bundles a planner run's output with the bookkeeping the
// master driver needs to update statistics per spec §9's Open Questions.
type optimizeResult struct {
	plans     []Plan
	scatter   map[uint16]scatterLoc
	blocksIn  int
	blocksOut int
}

// expectedResponseLength computes the number of PDU bytes a response to p
// should contain: one byte-count byte plus the data payload.
func expectedResponseLength(p pdu) int {
	return 1 + int(p.totalChars)
}

// optimize runs the full planner pipeline of spec §2 layer 4: deduplicate
// and sort into runs, gap-aware merge, then First-Fit Decreasing packing
// into plans bounded by maxPDUChars.
func optimize(req ReadRequest, mode Mode, maxPDUChars uint16, latencyChars uint8) (optimizeResult, error) {
	if len(req.Addresses) == 0 {
		return optimizeResult{}, nil
	}

	blocks, locs, err := AddressesToBlocks(req.Addresses, req.SlaveID, req.FunctionCode)
	if err != nil {
		return optimizeResult{}, err
	}

	params := newCostParams(mode, req.FunctionCode, latencyChars)
	merged, sourceCounts := mergeBlockRun(blocks, params)

	pdus, packedFrom, err := ffdPack(merged, maxPDUChars)
	if err != nil {
		return optimizeResult{}, err
	}

	plans := make([]Plan, len(pdus))
	for i, p := range pdus {
		plans[i] = Plan{
			SlaveID:                p.slaveID,
			FunctionCode:           p.functionCode,
			StartAddress:           p.startAddress,
			Quantity:               p.quantity,
			ExpectedResponseLength: expectedResponseLength(p),
		}
	}

	// origBlockIndex -> merged block index, derived from how many original
	// blocks folded into each merged block (mergeBlockRun's sourceCounts).
	mergedOf := make([]int, len(blocks))
	idx := 0
	for mi, cnt := range sourceCounts {
		for k := 0; k < cnt; k++ {
			mergedOf[idx] = mi
			idx++
		}
	}

	// merged block index -> plan (pdu) index.
	mergedToPlan := make([]int, len(merged))
	for planIdx, origList := range packedFrom {
		for _, mi := range origList {
			mergedToPlan[mi] = planIdx
		}
	}

	scatter := make(map[uint16]scatterLoc, len(locs))
	for addr, loc := range locs {
		planIdx := mergedToPlan[mergedOf[loc.blockIndex]]
		scatter[addr] = scatterLoc{
			planIndex: planIdx,
			offset:    addr - plans[planIdx].StartAddress,
		}
	}

	return optimizeResult{
		plans:     plans,
		scatter:   scatter,
		blocksIn:  len(blocks),
		blocksOut: len(merged),
	}, nil
}
