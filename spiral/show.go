package spiral

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ShowGrid prints the spiral numbering as a console grid, for visual reference.
// The top row is the highest y, so the spiral reads counterclockwise as on paper.
// Cells inside the bounding box that were not generated are printed as ".".
func ShowGrid(w io.Writer, idx *Indexing) error {
	if len(idx.IndexAt) == 0 {
		return nil
	}

	lo, hi := idx.Bounds()
	width := len(strconv.Itoa(idx.N))
	height := hi.Y - lo.Y + 1

	for _, row := range Rev(height) {
		y := lo.Y + row
		cells := make([]string, 0, hi.X-lo.X+1)
		for x := lo.X; x <= hi.X; x++ {
			label := "."
			if k, ok := idx.IndexAt[Coord{x, y}]; ok {
				label = strconv.Itoa(k)
			}
			cells = append(cells, fmt.Sprintf("%*s", width, label))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return nil
}

// Rev returns reversed indices of a slice, e.g. for ranging over.
func Rev(length int) []int {
	indices := make([]int, length)
	for i := 0; i < length; i++ {
		indices[i] = length - i - 1
	}
	return indices
}
