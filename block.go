package modbus

import "sort"

// Block is a contiguous request fragment: one run of addresses that can be
// served by a single function-code request (spec §3 "Block").
type Block struct {
	SlaveID      byte
	FunctionCode byte
	StartAddress uint16
	Quantity     uint16
	IsMerged     bool
}

// end returns the address one past the last address covered by b.
func (b Block) end() uint32 {
	return uint32(b.StartAddress) + uint32(b.Quantity)
}

// Validate checks the invariants of spec §3: quantity ≥ 1, no address
// overflow, quantity within the function code's policy maximum, and a
// known function code.
func (b Block) Validate() error {
	p, ok := lookupPolicy(b.FunctionCode)
	if !ok {
		return newError(KindInvalidFC, "function code %#x is not in the policy table", b.FunctionCode)
	}
	if b.Quantity == 0 {
		return newError(KindInvalidQuantity, "quantity must be at least 1")
	}
	if b.Quantity > p.maxQuantity {
		return newError(KindInvalidQuantity, "quantity %d exceeds policy maximum %d for fc %#x", b.Quantity, p.maxQuantity, b.FunctionCode)
	}
	if b.end() > 0x10000 {
		return newError(KindInvalidAddress, "start address %d + quantity %d overflows the address space", b.StartAddress, b.Quantity)
	}
	return nil
}

// SortByAddress orders blocks ascending by start address.
func SortByAddress(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartAddress < blocks[j].StartAddress
	})
}

// SortByQuantityDesc orders blocks descending by quantity, the ordering
// First-Fit Decreasing packing requires (spec §4.5).
func SortByQuantityDesc(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Quantity > blocks[j].Quantity
	})
}

// Compatible reports whether a and b share a slave id and function code,
// the precondition for adjacency, gap, and merge (spec §4.3).
func Compatible(a, b Block) bool {
	return a.SlaveID == b.SlaveID && a.FunctionCode == b.FunctionCode
}

// Adjacent reports whether b starts exactly where a ends, given compatible
// blocks ordered a before b.
func Adjacent(a, b Block) bool {
	if !Compatible(a, b) {
		return false
	}
	if a.StartAddress > b.StartAddress {
		a, b = b, a
	}
	return a.end() == uint32(b.StartAddress)
}

// Gap returns the number of unrequested units strictly between a and b's
// address ranges, after ordering a before b. Overlapping or adjacent
// blocks have a gap of zero.
func Gap(a, b Block) uint16 {
	if a.StartAddress > b.StartAddress {
		a, b = b, a
	}
	end := a.end()
	if end >= uint32(b.StartAddress) {
		return 0
	}
	return uint16(uint32(b.StartAddress) - end)
}

// Merge combines two compatible blocks into the block spanning their
// union: [min(start), max(end)). It fails with ErrInvalidParam if the
// blocks are incompatible.
func Merge(a, b Block) (Block, error) {
	if !Compatible(a, b) {
		return Block{}, newError(KindInvalidParam, "cannot merge blocks with different slave id or function code")
	}
	if a.StartAddress > b.StartAddress {
		a, b = b, a
	}
	end := a.end()
	if bEnd := b.end(); bEnd > end {
		end = bEnd
	}
	return Block{
		SlaveID:      a.SlaveID,
		FunctionCode: a.FunctionCode,
		StartAddress: a.StartAddress,
		Quantity:     uint16(end - uint32(a.StartAddress)),
		IsMerged:     true,
	}, nil
}

// dataSize returns the data-only character count of b, per the unit-size
// rule of spec §4.1.
func (b Block) dataSize() uint16 {
	return dataBytes(b.FunctionCode, b.Quantity)
}

// addressLoc records where one user-requested address ended up after
// AddressesToBlocks: which block it fell into, and its offset from that
// block's start (used later to scatter decoded values back to the
// caller's original address order, spec §4.7).
type addressLoc struct {
	blockIndex int
	offset     uint16
}

// AddressesToBlocks deduplicates and sorts addrs, then coalesces them into
// the minimal set of contiguous Blocks. It also returns, for every
// deduplicated address in ascending order, which block holds it and its
// offset within that block — the scatter map the planner threads through
// merging and packing so the final result can be delivered in the
// caller's original address order regardless of how blocks were merged
// or packed.
func AddressesToBlocks(addrs []uint16, slave, fc byte) ([]Block, map[uint16]addressLoc, error) {
	if !isValidFC(fc) {
		return nil, nil, newError(KindInvalidFC, "function code %#x is not in the policy table", fc)
	}
	if len(addrs) == 0 {
		return nil, nil, nil
	}

	sorted := append([]uint16(nil), addrs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Deduplicate equal neighbors (spec §4.3: explicit dedup, not left
	// implicit, to avoid zero-quantity blocks).
	dedup := sorted[:1]
	for _, a := range sorted[1:] {
		if a != dedup[len(dedup)-1] {
			dedup = append(dedup, a)
		}
	}

	var blocks []Block
	locs := make(map[uint16]addressLoc, len(dedup))

	blockStart := dedup[0]
	blockQty := uint16(1)
	for i := 1; i < len(dedup); i++ {
		if dedup[i] == dedup[i-1]+1 {
			blockQty++
			continue
		}
		blocks = append(blocks, Block{SlaveID: slave, FunctionCode: fc, StartAddress: blockStart, Quantity: blockQty})
		blockStart = dedup[i]
		blockQty = 1
	}
	blocks = append(blocks, Block{SlaveID: slave, FunctionCode: fc, StartAddress: blockStart, Quantity: blockQty})

	bi := 0
	for _, a := range dedup {
		for uint32(a) >= blocks[bi].end() {
			bi++
		}
		locs[a] = addressLoc{blockIndex: bi, offset: a - blocks[bi].StartAddress}
	}

	return blocks, locs, nil
}
