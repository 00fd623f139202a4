package project

// TransitiveClosure extends roots with every fragment reachable through
// index (fragment_spreads_index) by BFS, bounding work with a
// visited-set so cyclic fragment spreads terminate. Both pkg/lint's
// unused-fragment rule and pkg/validate's unused-fragment-diagnostic
// suppression call this exact function, so the two can never disagree
// about which fragments a document transitively uses (spec.md §9,
// property P6).
func TransitiveClosure(roots []string, index SpreadsIndex) map[string]struct{} {
	visited := make(map[string]struct{}, len(roots))
	queue := append([]string{}, roots...)
	for _, r := range roots {
		visited[r] = struct{}{}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for spread := range index.DirectSpreads[name] {
			if _, seen := visited[spread]; seen {
				continue
			}
			visited[spread] = struct{}{}
			queue = append(queue, spread)
		}
	}
	return visited
}
