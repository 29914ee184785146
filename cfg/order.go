package cfg

import "sort"

// Order computes the linear emission sequence for every block reachable
// from the graph's entry, respecting the fall-through and relative-jump
// precedence rules of spec.md §4.D:
//
//  1. if B.next = C, C appears immediately after B;
//  2. for every relative-jump edge B -> T, B appears before T;
//  3. every reachable block appears exactly once;
//  4. a block with no fall-through successor and no unconditional
//     terminator is followed by an implicit fall-through to exit (exit is
//     placed there once, at the first such block).
//
// Determinism follows from stable, counter-assigned block ids: ties in
// the must-precede scan are always broken by ascending id, so two runs
// over the same graph produce byte-identical order (spec.md §5).
func (g *FlowGraph) Order() ([]BlockID, error) {
	reachable := g.reachableFrom(g.entry)
	reachSet := make(map[BlockID]bool, len(reachable)+1)
	for _, id := range reachable {
		reachSet[id] = true
	}
	if !reachSet[g.exit] {
		reachable = append(reachable, g.exit)
		reachSet[g.exit] = true
	}

	dominators := g.mustPrecede(reachable)

	remaining := make(map[BlockID]bool, len(reachable))
	for _, id := range reachable {
		remaining[id] = true
	}
	emitted := make(map[BlockID]bool, len(reachable))
	var order []BlockID
	emit := func(id BlockID) {
		order = append(order, id)
		emitted[id] = true
		delete(remaining, id)
	}

	cur := g.entry
	emit(cur)
	for {
		b := g.Block(cur)
		if next, ok := b.Next(); ok && !emitted[next] {
			cur = next
			emit(cur)
			continue
		}
		if cur != g.exit && !b.HasUnconditionalTransfer() && !emitted[g.exit] {
			cur = g.exit
			emit(cur)
			continue
		}
		if len(remaining) == 0 {
			break
		}
		next, ok := pickSatisfied(remaining, dominators)
		if !ok {
			return nil, ErrCircularEmissionDependency
		}
		logger.Printf("order: picked block %d out of %d remaining", next, len(remaining))
		cur = next
		emit(cur)
	}
	return order, nil
}

// mustPrecede builds the "B must be emitted before C" relation (spec.md
// §4.D calls it a dominator relation, though it is not the classical CFG
// dominator): seed it with every follower edge, then walk each follower's
// fall-through chain backward so an entire chain stays contiguous after
// whatever forces it to follow B.
func (g *FlowGraph) mustPrecede(reachable []BlockID) map[BlockID]map[BlockID]bool {
	dominators := make(map[BlockID]map[BlockID]bool, len(reachable))
	require := func(before, after BlockID) {
		if dominators[after] == nil {
			dominators[after] = make(map[BlockID]bool)
		}
		dominators[after][before] = true
	}

	for _, bid := range reachable {
		b := g.Block(bid)
		for _, t := range b.Followers() {
			for anc := t; ; {
				require(bid, anc)
				// Walk back along the fall-through chain so the whole
				// chain stays dominated, but stop as soon as we reach
				// bid itself (or run out of predecessors): bid must
				// never be recorded as its own dominator, and the walk
				// must never cross back past bid into bid's own
				// predecessors.
				prev, ok := g.Block(anc).Prev()
				if !ok || prev == bid {
					break
				}
				anc = prev
			}
		}
	}
	return dominators
}

// pickSatisfied scans remaining, in ascending block-id order, for a block
// whose every must-precede predecessor has already left remaining.
func pickSatisfied(remaining map[BlockID]bool, dominators map[BlockID]map[BlockID]bool) (BlockID, bool) {
	ids := make([]BlockID, 0, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		satisfied := true
		for dom := range dominators[id] {
			if remaining[dom] {
				satisfied = false
				break
			}
		}
		if satisfied {
			return id, true
		}
	}
	return 0, false
}

// reachableFrom walks Children() (out-edges union next) from start,
// iteratively to avoid recursion on deep graphs, returning the visited
// ids in discovery order.
func (g *FlowGraph) reachableFrom(start BlockID) []BlockID {
	visited := map[BlockID]bool{start: true}
	order := []BlockID{start}
	work := []BlockID{start}

	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]

		for _, c := range g.Block(id).Children() {
			if !visited[c] {
				visited[c] = true
				order = append(order, c)
				work = append(work, c)
			}
		}
	}
	return order
}
