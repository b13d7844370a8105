package layout

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/ritzau/code-intel/pkg/graph"
)

// Algorithm names a placement strategy
type Algorithm string

const (
	Force        Algorithm = "force"
	Hierarchical Algorithm = "hierarchical"
	Radial       Algorithm = "radial"
	Organic      Algorithm = "organic"
)

// Parse maps a configuration string to an Algorithm
func Parse(s string) (Algorithm, error) {
	switch s {
	case "force", "force-directed", "":
		return Force, nil
	case "hierarchical":
		return Hierarchical, nil
	case "radial":
		return Radial, nil
	case "organic":
		return Organic, nil
	default:
		return "", fmt.Errorf("unknown layout algorithm %q", s)
	}
}

const (
	hSpacing    = 140.0
	vSpacing    = 120.0
	ringSpacing = 160.0
)

// Apply assigns a 2D position to every node in the graph. Positions are a
// pure function of the graph's node/edge order, never of wall clock or
// randomness: identical graphs lay out identically.
func Apply(g *graph.Graph, algo Algorithm) {
	if len(g.Nodes) == 0 {
		return
	}
	switch algo {
	case Hierarchical:
		applyHierarchical(g)
	case Radial:
		applyRadial(g)
	case Organic:
		applyOrganic(g)
	default:
		applyForce(g)
	}
}

// layerNodes assigns each node a BFS layer: dependency sources (in-degree 0)
// sit in layer 0 and every first visit fixes a layer. Nodes only reachable
// through cycles fall back to layer 0.
func layerNodes(g *graph.Graph) map[string]int {
	inDegree := make(map[string]int, len(g.Nodes))
	adjacency := make(map[string][]string)
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		if _, ok := inDegree[e.Source]; !ok {
			continue
		}
		if _, ok := inDegree[e.Target]; !ok {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	layer := make(map[string]int, len(g.Nodes))
	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			layer[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if _, seen := layer[next]; seen {
				continue
			}
			layer[next] = layer[cur] + 1
			queue = append(queue, next)
		}
	}
	for _, n := range g.Nodes {
		if _, ok := layer[n.ID]; !ok {
			layer[n.ID] = 0
		}
	}
	return layer
}

// applyHierarchical places layers top to bottom, each layer centered
func applyHierarchical(g *graph.Graph) {
	layer := layerNodes(g)

	byLayer := make(map[int][]*graph.Node)
	maxLayer := 0
	for _, n := range g.Nodes {
		l := layer[n.ID]
		byLayer[l] = append(byLayer[l], n)
		if l > maxLayer {
			maxLayer = l
		}
	}

	for l := 0; l <= maxLayer; l++ {
		nodes := byLayer[l]
		width := float64(len(nodes)-1) * hSpacing
		for i, n := range nodes {
			n.Position = &graph.Position{
				X: float64(i)*hSpacing - width/2,
				Y: float64(l) * vSpacing,
			}
		}
	}
}

// applyRadial places layer 0 in the middle and later layers on growing rings
func applyRadial(g *graph.Graph) {
	layer := layerNodes(g)

	byLayer := make(map[int][]*graph.Node)
	for _, n := range g.Nodes {
		l := layer[n.ID]
		byLayer[l] = append(byLayer[l], n)
	}

	for l, nodes := range byLayer {
		radius := float64(l) * ringSpacing
		if l == 0 && len(nodes) > 1 {
			// Multiple roots share a small inner ring instead of stacking
			radius = ringSpacing / 3
		}
		for i, n := range nodes {
			angle := 2 * math.Pi * float64(i) / float64(len(nodes))
			n.Position = &graph.Position{
				X: radius * math.Cos(angle),
				Y: radius * math.Sin(angle),
			}
		}
	}
}

// applyForce runs a fixed-iteration spring simulation seeded from a circle.
// No randomness: the node order decides the seed, so reruns agree.
func applyForce(g *graph.Graph) {
	n := len(g.Nodes)
	area := float64(n) * hSpacing * vSpacing
	k := math.Sqrt(area / float64(n))

	pos := make([]graph.Position, n)
	index := make(map[string]int, n)
	seedRadius := k * float64(n) / (2 * math.Pi)
	for i, node := range g.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = graph.Position{X: seedRadius * math.Cos(angle), Y: seedRadius * math.Sin(angle)}
		index[node.ID] = i
	}

	type pair struct{ a, b int }
	var springs []pair
	for _, e := range g.Edges {
		ai, okA := index[e.Source]
		bi, okB := index[e.Target]
		if okA && okB && ai != bi {
			springs = append(springs, pair{ai, bi})
		}
	}

	disp := make([]graph.Position, n)
	temperature := k * float64(n) / 10
	const iterations = 50
	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = graph.Position{}
		}

		// Pairwise repulsion
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-9 {
					// Coincident nodes push apart along the index axis
					dx, dy, dist = 1e-3*float64(j-i), 0, 1e-3*float64(j-i)
				}
				force := k * k / dist
				disp[i].X += dx / dist * force
				disp[i].Y += dy / dist * force
				disp[j].X -= dx / dist * force
				disp[j].Y -= dy / dist * force
			}
		}

		// Spring attraction along edges
		for _, s := range springs {
			dx := pos[s.a].X - pos[s.b].X
			dy := pos[s.a].Y - pos[s.b].Y
			dist := math.Hypot(dx, dy)
			if dist < 1e-9 {
				continue
			}
			force := dist * dist / k
			disp[s.a].X -= dx / dist * force
			disp[s.a].Y -= dy / dist * force
			disp[s.b].X += dx / dist * force
			disp[s.b].Y += dy / dist * force
		}

		// Move, capped by the cooling temperature
		for i := 0; i < n; i++ {
			dist := math.Hypot(disp[i].X, disp[i].Y)
			if dist < 1e-9 {
				continue
			}
			limited := math.Min(dist, temperature)
			pos[i].X += disp[i].X / dist * limited
			pos[i].Y += disp[i].Y / dist * limited
		}
		temperature *= 0.95
	}

	for i, node := range g.Nodes {
		p := pos[i]
		node.Position = &graph.Position{X: round1(p.X), Y: round1(p.Y)}
	}
}

// applyOrganic hashes node IDs into a square and nudges collisions apart.
// It looks scattered but is entirely reproducible.
func applyOrganic(g *graph.Graph) {
	side := math.Ceil(math.Sqrt(float64(len(g.Nodes)))) * hSpacing

	for _, n := range g.Nodes {
		h := fnv.New64a()
		h.Write([]byte(n.ID))
		sum := h.Sum64()
		x := float64(sum%100000) / 100000 * side
		y := float64((sum/100000)%100000) / 100000 * side
		n.Position = &graph.Position{X: round1(x), Y: round1(y)}
	}

	// Two separation passes resolve hash collisions deterministically
	for pass := 0; pass < 2; pass++ {
		for i, a := range g.Nodes {
			for _, b := range g.Nodes[i+1:] {
				dx := b.Position.X - a.Position.X
				dy := b.Position.Y - a.Position.Y
				if math.Hypot(dx, dy) >= hSpacing/2 {
					continue
				}
				shift := hSpacing / 4
				if dx == 0 && dy == 0 {
					b.Position.X += shift
					continue
				}
				dist := math.Hypot(dx, dy)
				b.Position.X += dx / dist * shift
				b.Position.Y += dy / dist * shift
			}
		}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
