package analysis

// FindCircularDependencies runs a depth-first search over dependency edges
// and records every back edge it meets as a cycle: the slice of the current
// path from the first occurrence of the revisited node to the node that
// closed the loop. Overlapping cycles are reported individually; nothing is
// de-duplicated beyond the coloring itself.
func (a *Analyzer) FindCircularDependencies() [][]string {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)

	color := make(map[string]int, len(a.order))
	var cycles [][]string

	type frame struct {
		id   string
		next int
	}

	for _, root := range a.order {
		if color[root] != white {
			continue
		}

		stack := []frame{{id: root}}
		path := []string{root}
		color[root] = gray

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			neighbors := a.out[f.id]

			descended := false
			for f.next < len(neighbors) {
				next := neighbors[f.next]
				f.next++

				switch color[next] {
				case white:
					color[next] = gray
					path = append(path, next)
					stack = append(stack, frame{id: next})
					descended = true
				case gray:
					// Back edge: cycle runs from the revisited node to here
					start := 0
					for i, id := range path {
						if id == next {
							start = i
							break
						}
					}
					cycle := make([]string, len(path)-start)
					copy(cycle, path[start:])
					cycles = append(cycles, cycle)
				}
				if descended {
					break
				}
			}

			if !descended {
				color[f.id] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}

	return cycles
}
