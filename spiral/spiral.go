// spiral numbers the cells of the integer lattice along an outward square spiral.
package spiral

import (
	"errors"
	"fmt"
)

// Coord is a cell of the infinite lattice. X grows to the right and Y grows upward.
type Coord struct {
	X, Y int
}

// Add returns the coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Indexing is the bidirectional mapping between spiral indices 1..N and lattice cells.
// Both maps are built together by Generate and must be treated as read-only afterward.
type Indexing struct {
	N       int
	CoordOf map[int]Coord
	IndexAt map[Coord]int
}

// ErrInvalidArgument is returned when the requested spiral size is not a positive integer.
var ErrInvalidArgument = errors.New("spiral size must be a positive integer")

// The direction cycle: right, up, left, down.
var directions = [4]Coord{
	{1, 0},
	{0, 1},
	{-1, 0},
	{0, -1},
}

// Generate walks the square spiral outward from the origin, assigning indices 1..n.
// Legs have lengths 1,1,2,2,3,3,... since the step length grows after each vertical leg.
// Generation stops as soon as n cells are numbered, even mid-leg.
func Generate(n int) (*Indexing, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArgument, n)
	}

	idx := &Indexing{
		N:       n,
		CoordOf: make(map[int]Coord, n),
		IndexAt: make(map[Coord]int, n),
	}

	cur := Coord{}
	k := 1
	idx.assign(k, cur)

	stepLen := 1
	for k < n {
		for dir, delta := range directions {
			for s := 0; s < stepLen && k < n; s++ {
				cur = cur.Add(delta.X, delta.Y)
				k++
				idx.assign(k, cur)
			}
			// Legs grow after up and down.
			if dir%2 == 1 {
				stepLen++
			}
			if k >= n {
				break
			}
		}
	}

	return idx, nil
}

func (idx *Indexing) assign(k int, c Coord) {
	idx.CoordOf[k] = c
	idx.IndexAt[c] = k
}

// Ring returns the square ring on which spiral index k lies: ring 0 is the origin
// and ring r holds indices ((2r-1)^2, (2r+1)^2]. Every cell of ring r has max(|x|,|y|) == r.
func Ring(k int) int {
	r := 0
	for side := 1; side*side < k; side += 2 {
		r++
	}
	return r
}

// Bounds returns the corners of the smallest box containing every generated cell.
func (idx *Indexing) Bounds() (lo, hi Coord) {
	first := true
	for c := range idx.IndexAt {
		if first {
			lo, hi = c, c
			first = false
			continue
		}
		lo.X, hi.X = min(lo.X, c.X), max(hi.X, c.X)
		lo.Y, hi.Y = min(lo.Y, c.Y), max(hi.Y, c.Y)
	}
	return
}
