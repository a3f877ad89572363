package desigo

// FitIndex maps a target identifier to the positions of the redshift-fit
// records carrying that identifier. Positions keep the fit table's original
// order, so a re-observed target lists its fits oldest-first exactly as the
// fitting code emitted them.
type FitIndex struct {
	positions map[int64][]int
	n         int
}

// NewFitIndex builds the identifier index in one pass over the fit records.
func NewFitIndex(fitIDs []int64) *FitIndex {
	positions := make(map[int64][]int, len(fitIDs))
	for i, id := range fitIDs {
		positions[id] = append(positions[id], i)
	}
	return &FitIndex{positions: positions, n: len(fitIDs)}
}

// Len returns the number of fit records indexed.
func (ix *FitIndex) Len() int { return ix.n }

// Positions returns the fit-record positions sharing id, in fit-table order.
// The returned slice is shared with the index and must be treated as
// read-only. Identifiers absent from the fit table return nil.
func (ix *FitIndex) Positions(id int64) []int {
	return ix.positions[id]
}

// Join returns, for each target identifier in its original order, the list of
// fit-record positions sharing that identifier. Targets without a matching
// fit contribute an empty list; an unmatched identifier is routine (fibers
// are not always assigned a fit) and is not an error.
func (ix *FitIndex) Join(targetIDs []int64) [][]int {
	out := make([][]int, len(targetIDs))
	for i, id := range targetIDs {
		out[i] = ix.positions[id]
	}
	return out
}

// Pairs flattens the join into aligned row lists: targetRows[k] is a position
// in the target table and fitRows[k] the matching position in the fit table.
// A target matching m fit records contributes m consecutive pairs.
func (ix *FitIndex) Pairs(targetIDs []int64) (targetRows, fitRows []int) {
	for i, id := range targetIDs {
		for _, p := range ix.positions[id] {
			targetRows = append(targetRows, i)
			fitRows = append(fitRows, p)
		}
	}
	return targetRows, fitRows
}

// JoinTargets is the one-shot form of NewFitIndex followed by Join.
func JoinTargets(targetIDs, fitIDs []int64) [][]int {
	return NewFitIndex(fitIDs).Join(targetIDs)
}

// Unmatched reports the distinct target identifiers that have no fit record,
// in first-appearance order. The join itself stays silent about them; this is
// a data-quality diagnostic for callers that want to know.
func Unmatched(targetIDs, fitIDs []int64) []int64 {
	ix := NewFitIndex(fitIDs)
	seen := make(map[int64]struct{})
	var missing []int64
	for _, id := range targetIDs {
		if _, ok := ix.positions[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
