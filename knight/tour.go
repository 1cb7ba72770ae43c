package knight

import (
	"fmt"

	"trapped/spiral"
)

// Tour is a spiral numbering together with the knight's greedy walk over it.
// It is immutable and safe to share between goroutines.
type Tour struct {
	*spiral.Indexing
	Path Path
}

// Stats summarizes a finished walk.
type Stats struct {
	N       int `json:"n"`
	Visited int `json:"visited"`
	Moves   int `json:"moves"`
	Final   int `json:"final"`
}

// NewTour numbers n spiral cells and walks the knight over them.
func NewTour(n int) (*Tour, error) {
	idx, err := spiral.Generate(n)
	if err != nil {
		return nil, fmt.Errorf("generate spiral: %w", err)
	}

	return &Tour{
		Indexing: idx,
		Path:     GreedyWalk(idx.CoordOf, idx.IndexAt),
	}, nil
}

func (t *Tour) Stats() Stats {
	return Stats{
		N:       t.N,
		Visited: len(t.Path),
		Moves:   t.Path.Moves(),
		Final:   t.Path.Last(),
	}
}

// Visits returns the coordinates of the path, in visiting order.
func (t *Tour) Visits() []spiral.Coord {
	coords := make([]spiral.Coord, len(t.Path))
	for i, k := range t.Path {
		coords[i] = t.CoordOf[k]
	}
	return coords
}

// Trapped reports whether the final cell has no unvisited knight-reachable neighbor.
func (t *Tour) Trapped() bool {
	if len(t.Path) == 0 {
		return false
	}

	visited := make(map[int]bool, len(t.Path))
	for _, k := range t.Path {
		visited[k] = true
	}
	for _, k := range Reachable(t.CoordOf[t.Path.Last()], t.IndexAt) {
		if !visited[k] {
			return false
		}
	}
	return true
}

// EdgeLimited reports whether some knight move from the final cell leaves the generated
// spiral. In that case the knight may only be trapped because the numbering is finite,
// and a larger spiral could extend the walk.
func (t *Tour) EdgeLimited() bool {
	if len(t.Path) == 0 {
		return false
	}

	final := t.CoordOf[t.Path.Last()]
	return len(Reachable(final, t.IndexAt)) < len(Offsets)
}
