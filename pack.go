package modbus

// pdu is the packing accumulator of spec §3 "PDU container": it tracks
// the address-range union of the blocks folded into it and the resulting
// data-only character count.
type pdu struct {
	slaveID      byte
	functionCode byte
	startAddress uint16
	quantity     uint16
	totalChars   uint16
}

// empty reports whether the PDU has not yet had a block folded into it.
func (p pdu) empty() bool {
	return p.quantity == 0
}

func (p pdu) end() uint32 {
	return uint32(p.startAddress) + uint32(p.quantity)
}

// blockFitsPDU reports whether block can be folded into pdu without
// violating compatibility, the function code's max quantity, or
// maxPDUChars. Sizing uses the address-range union, not the sum of
// quantities: two address-disjoint blocks folded into the same PDU widen
// the range to [min_start, max_end) (spec §4.5).
func blockFitsPDU(block Block, p pdu, maxPDUChars uint16) bool {
	if p.empty() {
		return block.dataSize() <= maxPDUChars
	}
	if block.SlaveID != p.slaveID || block.FunctionCode != p.functionCode {
		return false
	}

	minStart := block.StartAddress
	if p.startAddress < minStart {
		minStart = p.startAddress
	}
	maxEnd := block.end()
	if pEnd := p.end(); pEnd > maxEnd {
		maxEnd = pEnd
	}
	mergedQuantity := uint16(maxEnd - uint32(minStart))

	policy, ok := lookupPolicy(block.FunctionCode)
	if !ok || mergedQuantity > policy.maxQuantity {
		return false
	}

	return dataBytes(block.FunctionCode, mergedQuantity) <= maxPDUChars
}

// addBlockToPDU folds block into pdu, widening its address range to the
// union of the two and recomputing totalChars. If pdu is empty it is
// seeded with block directly.
func addBlockToPDU(block Block, p *pdu) {
	if p.empty() {
		p.slaveID = block.SlaveID
		p.functionCode = block.FunctionCode
		p.startAddress = block.StartAddress
		p.quantity = block.Quantity
		p.totalChars = block.dataSize()
		return
	}

	minStart := block.StartAddress
	if p.startAddress < minStart {
		minStart = p.startAddress
	}
	maxEnd := block.end()
	if pEnd := p.end(); pEnd > maxEnd {
		maxEnd = pEnd
	}

	p.startAddress = minStart
	p.quantity = uint16(maxEnd - uint32(minStart))
	p.totalChars = dataBytes(p.functionCode, p.quantity)
}

// ffdPack bin-packs blocks into PDU containers bounded by maxPDUChars
// using First-Fit Decreasing (spec §4.5): blocks are considered largest
// quantity first, each placed into the first existing PDU it fits, or a
// new PDU if none do. This runs after the cost-based merge pass and must
// not re-run the cost test: a block may be packed here even though its
// gap to a neighbor was rejected by the merge pass, because FFD asks "does
// it fit the frame", not "is it beneficial".
//
// packedFrom[i] lists, for pdus[i], the indices into the (unsorted) input
// blocks slice that were folded into it, so callers can recover which
// source blocks ended up in which plan.
func ffdPack(blocks []Block, maxPDUChars uint16) (pdus []pdu, packedFrom [][]int, err error) {
	if len(blocks) == 0 {
		return nil, nil, nil
	}

	type indexed struct {
		Block
		origIndex int
	}
	sorted := make([]indexed, len(blocks))
	for i, b := range blocks {
		sorted[i] = indexed{Block: b, origIndex: i}
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Quantity < sorted[j].Quantity; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	for _, b := range sorted {
		placed := false
		for j := range pdus {
			if blockFitsPDU(b.Block, pdus[j], maxPDUChars) {
				addBlockToPDU(b.Block, &pdus[j])
				packedFrom[j] = append(packedFrom[j], b.origIndex)
				placed = true
				break
			}
		}
		if !placed {
			var np pdu
			addBlockToPDU(b.Block, &np)
			pdus = append(pdus, np)
			packedFrom = append(packedFrom, []int{b.origIndex})
		}
	}

	return pdus, packedFrom, nil
}
