package analysis

const (
	pageRankDamping    = 0.85
	pageRankIterations = 20
)

// CalculateImportanceScores scores every node with a fixed-iteration PageRank
// over dependency edges. Scores start uniform and sum to ~1.0 after every
// iteration; mass from dangling nodes (no outgoing edges) is redistributed
// across the whole graph instead of leaking.
func (a *Analyzer) CalculateImportanceScores() map[string]float64 {
	n := len(a.order)
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	initial := 1.0 / float64(n)
	for _, id := range a.order {
		scores[id] = initial
	}

	for iter := 0; iter < pageRankIterations; iter++ {
		dangling := 0.0
		for _, id := range a.order {
			if len(a.out[id]) == 0 {
				dangling += scores[id]
			}
		}

		base := (1-pageRankDamping)/float64(n) + pageRankDamping*dangling/float64(n)
		next := make(map[string]float64, n)
		for _, id := range a.order {
			next[id] = base
		}
		for _, id := range a.order {
			deg := len(a.out[id])
			if deg == 0 {
				continue
			}
			share := pageRankDamping * scores[id] / float64(deg)
			for _, target := range a.out[id] {
				next[target] += share
			}
		}
		scores = next
	}

	return scores
}

// CalculateBetweennessCentrality approximates betweenness centrality: one BFS
// per source yields a single shortest path to each reachable target (ties go
// to whichever parent the traversal reached first), and every intermediate
// node on that path earns a point. Scores are normalized by the maximum, so
// the busiest broker sits at 1.0. This single-path approximation trades
// exactness for O(V·E); downstream consumers only rank by it.
func (a *Analyzer) CalculateBetweennessCentrality() map[string]float64 {
	scores := make(map[string]float64, len(a.order))
	for _, id := range a.order {
		scores[id] = 0
	}

	for _, source := range a.order {
		parent := make(map[string]string)
		visited := map[string]bool{source: true}
		queue := []string{source}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range a.out[cur] {
				if visited[next] {
					continue
				}
				visited[next] = true
				parent[next] = cur
				queue = append(queue, next)
			}
		}

		// Credit the interior of each discovered path
		for target := range parent {
			for cur := parent[target]; cur != "" && cur != source; cur = parent[cur] {
				scores[cur]++
			}
		}
	}

	maxScore := 0.0
	for _, v := range scores {
		if v > maxScore {
			maxScore = v
		}
	}
	if maxScore > 0 {
		for k := range scores {
			scores[k] /= maxScore
		}
	}

	return scores
}
