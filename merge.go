package modbus

// shouldMerge decides whether nxt should be folded into cur, per spec
// §4.4: the blocks must be compatible, the function code must support
// merging, and either the blocks are adjacent or the gap between them is
// strictly profitable under the cost model.
func shouldMerge(cur, nxt Block, params costParams) bool {
	if !Compatible(cur, nxt) {
		return false
	}
	p, ok := lookupPolicy(cur.FunctionCode)
	if !ok || !p.supportsMerge {
		return false
	}
	if Adjacent(cur, nxt) {
		return true
	}
	gap := Gap(cur, nxt)
	if gap == 0 {
		return true // overlapping
	}
	return mergeSavings(gap, cur.FunctionCode, params) > 0
}

// mergeBlockRun performs the gap-aware merge pass of spec §4.4 over a
// sorted array of compatible blocks, returning the merged result and the
// number of input blocks that folded into each output block, indexed the
// same way as the result, so callers can track how the scatter map's
// block indices move after merging.
//
// The algorithm is intentionally greedy, not optimal: once two blocks
// fuse, the new gap to the next block is evaluated against the same
// overhead constant, never revisited.
func mergeBlockRun(blocks []Block, params costParams) (merged []Block, sourceCounts []int) {
	if len(blocks) == 0 {
		return nil, nil
	}

	readIdx := 0
	for readIdx < len(blocks) {
		cur := blocks[readIdx]
		readIdx++
		count := 1

		for readIdx < len(blocks) && shouldMerge(cur, blocks[readIdx], params) {
			next := blocks[readIdx]
			m, err := Merge(cur, next)
			if err != nil {
				break
			}
			cur = m
			readIdx++
			count++
		}

		merged = append(merged, cur)
		sourceCounts = append(sourceCounts, count)
	}

	return merged, sourceCounts
}
