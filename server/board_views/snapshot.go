// board_views contains views derived from the Snapshot view-model.
package board_views

import (
	"fmt"
	"strconv"
	"strings"

	"trapped/animation"
	"trapped/config"
	"trapped/knight"
	"trapped/spiral"
)

// numBands is the number of hue bands the trail is split into. Each band is drawn
// as one polyline, approximating the per-move hue gradient of the trail.
const numBands = 36

// Point is a position in svg pixels.
type Point struct {
	X, Y float64
}

// Rect is an svg rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Band is a contiguous stretch of the trail drawn in a single hue.
type Band struct {
	Id     string
	Hue    int
	Points string
}

// Snapshot is the board as it should appear for one animation frame.
// As a rule of thumb, Snapshot fields should be immediately usable as view parameters.
type Snapshot struct {
	Width, Height int
	Scale         int
	// Origin is the pixel position of spiral cell 1.
	Origin Point
	// Board is the extent of the checkerboard drawn under the trail.
	Board  Rect
	Bands  []Band
	Knight Point
	Final  Point

	N int
	// Step is the position in the path of the knight's current cell.
	Step        int
	Length      int
	Current     int
	Last        int
	Speed       int
	Paused      bool
	Done        bool
	EdgeLimited bool
}

// Converter transforms animation frames of a tour into Snapshots.
// The tour is only read, so a Converter may be shared by every client's view pipeline.
type Converter struct {
	tour        *knight.Tour
	board       config.BoardConfig
	visits      []spiral.Coord
	pixels      []Point
	bandStarts  []int
	edgeLimited bool
}

func NewConverter(tour *knight.Tour, board config.BoardConfig) *Converter {
	cv := &Converter{
		tour:        tour,
		board:       board,
		visits:      tour.Visits(),
		edgeLimited: tour.EdgeLimited(),
	}

	cv.pixels = make([]Point, len(cv.visits))
	for i, c := range cv.visits {
		cv.pixels[i] = cv.toPixels(c)
	}

	length := len(tour.Path)
	bands := min(numBands, length)
	for b := 0; b < bands; b++ {
		cv.bandStarts = append(cv.bandStarts, b*length/bands)
	}
	return cv
}

// toPixels maps a lattice cell to its svg center. Like the canvas the sketch drew on,
// svg y grows downward, so the spiral appears mirrored vertically.
func (cv *Converter) toPixels(c spiral.Coord) Point {
	origin := cv.origin()
	scale := float64(cv.board.Scale)
	return Point{
		X: origin.X + float64(c.X)*scale,
		Y: origin.Y + float64(c.Y)*scale,
	}
}

func (cv *Converter) origin() Point {
	return Point{
		X: float64(cv.board.Width) / 2,
		Y: float64(cv.board.Height) / 2,
	}
}

// Convert returns the snapshot of the board for the passed frame.
func (cv *Converter) Convert(frame animation.Frame) Snapshot {
	snap := Snapshot{
		Width:       cv.board.Width,
		Height:      cv.board.Height,
		Scale:       cv.board.Scale,
		Origin:      cv.origin(),
		N:           cv.tour.N,
		Length:      len(cv.tour.Path),
		Speed:       frame.Speed,
		Paused:      frame.Paused,
		Done:        frame.Done,
		EdgeLimited: cv.edgeLimited,
		Last:        cv.tour.Path.Last(),
	}

	if len(cv.pixels) == 0 {
		snap.Knight, snap.Final = snap.Origin, snap.Origin
		snap.Board = cv.boardRect(0)
		return snap
	}

	step := min(max(frame.Index, 0), len(cv.pixels)-1)
	snap.Step = step
	snap.Current = cv.tour.Path[step]
	snap.Knight = cv.pixels[step]
	snap.Final = cv.pixels[len(cv.pixels)-1]

	cur := cv.visits[step]
	snap.Board = cv.boardRect(min(cv.board.MaxRadius, max(abs(cur.X), abs(cur.Y))+cv.board.Margin))
	snap.Bands = cv.bands(step)
	return snap
}

// boardRect returns the checkerboard extent for a grid radius, in pixels.
func (cv *Converter) boardRect(gridR int) Rect {
	origin := cv.origin()
	scale := float64(cv.board.Scale)
	side := float64(2*gridR+1) * scale
	return Rect{
		X:      origin.X - (float64(gridR)+0.5)*scale,
		Y:      origin.Y - (float64(gridR)+0.5)*scale,
		Width:  side,
		Height: side,
	}
}

// bands returns every trail band with the points visible up to and including step.
// Each band after the first begins at the last point of its predecessor so the trail is unbroken.
func (cv *Converter) bands(step int) []Band {
	length := len(cv.pixels)
	bands := make([]Band, len(cv.bandStarts))
	for b, start := range cv.bandStarts {
		end := length
		if b+1 < len(cv.bandStarts) {
			end = cv.bandStarts[b+1]
		}

		bands[b] = Band{
			Id:  BandId(b),
			Hue: start * 360 / length,
		}
		if step < start {
			continue
		}

		from := max(start-1, 0)
		to := min(end-1, step)
		var sb strings.Builder
		for i := from; i <= to; i++ {
			if i > from {
				sb.WriteByte(' ')
			}
			sb.WriteString(formatNum(cv.pixels[i].X))
			sb.WriteByte(',')
			sb.WriteString(formatNum(cv.pixels[i].Y))
		}
		bands[b].Points = sb.String()
	}
	return bands
}

// BandId returns the element id of the trail band's polyline.
func BandId(b int) string {
	return fmt.Sprintf("trail%d", b)
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
