// knight implements the greedy knight walk over a spiral numbering.
package knight

import (
	"trapped/spiral"
)

// Path is the ordered sequence of spiral indices visited by the knight.
// It starts at 1 and never repeats an index.
type Path []int

// Last returns the final index of the path, or 0 for an empty path.
func (p Path) Last() int {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// Moves is the number of knight moves made, one less than the cells visited.
func (p Path) Moves() int {
	return max(len(p)-1, 0)
}

// Offsets are the eight knight moves, in the order in which they are probed.
var Offsets = [8]spiral.Coord{
	{X: 2, Y: 1}, {X: 1, Y: 2}, {X: -1, Y: 2}, {X: -2, Y: 1},
	{X: -2, Y: -1}, {X: -1, Y: -2}, {X: 1, Y: -2}, {X: 2, Y: -1},
}

// Reachable returns the indices a knight on c can reach, in Offsets order.
// Cells absent from indexAt are skipped.
func Reachable(c spiral.Coord, indexAt map[spiral.Coord]int) []int {
	reachable := make([]int, 0, len(Offsets))
	for _, off := range Offsets {
		if k, ok := indexAt[c.Add(off.X, off.Y)]; ok {
			reachable = append(reachable, k)
		}
	}
	return reachable
}

// GreedyWalk starts the knight on cell 1 and repeatedly moves it to the lowest-numbered
// unvisited cell a knight's move away, until it is trapped. A numbering without
// cell 1 yields an empty path.
func GreedyWalk(coordOf map[int]spiral.Coord, indexAt map[spiral.Coord]int) Path {
	cur, ok := coordOf[1]
	if !ok {
		return Path{}
	}

	visited := map[int]bool{1: true}
	path := Path{1}
	for {
		next, found := lowestUnvisited(Reachable(cur, indexAt), visited)
		if !found {
			return path
		}
		path = append(path, next)
		visited[next] = true
		cur = coordOf[next]
	}
}

func lowestUnvisited(candidates []int, visited map[int]bool) (lowest int, found bool) {
	for _, k := range candidates {
		if visited[k] {
			continue
		}
		if !found || k < lowest {
			lowest, found = k, true
		}
	}
	return
}
