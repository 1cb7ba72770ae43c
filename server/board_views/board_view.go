package board_views

import (
	"html/template"

	"trapped/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Board draws the faint checkerboard, the knight's trail up to the current frame,
// the knight itself, and a marker on the cell where it was trapped.
type Board struct {
	id      string
	differ  *fastview.Differ
	updates <-chan []fastview.EleUpdate
}

func NewBoard(
	done <-chan struct{},
	snapshots <-chan Snapshot,
) (bv *Board) {
	bv = &Board{
		id:     "board",
		differ: fastview.NewDiffer(),
	}
	bv.updates = channerics.Convert(done, snapshots, bv.onUpdate)
	return
}

func (bv *Board) Updates() <-chan []fastview.EleUpdate {
	return bv.updates
}

// Returns the set of view updates needed for the board to reflect the snapshot.
// The full board state is described and the differ drops what the client already has.
func (bv *Board) onUpdate(snap Snapshot) []fastview.EleUpdate {
	ops := []fastview.EleUpdate{
		fastview.SetAttrs(bv.id+"-checkers",
			"x", formatNum(snap.Board.X),
			"y", formatNum(snap.Board.Y),
			"width", formatNum(snap.Board.Width),
			"height", formatNum(snap.Board.Height)),
		fastview.SetAttrs("knight-marker",
			"cx", formatNum(snap.Knight.X),
			"cy", formatNum(snap.Knight.Y)),
		fastview.SetAttrs("knight-glyph",
			"x", formatNum(snap.Knight.X),
			"y", formatNum(snap.Knight.Y)),
		fastview.SetAttrs("knight-final",
			"cx", formatNum(snap.Final.X),
			"cy", formatNum(snap.Final.Y),
			"visibility", visibility(snap.Done)),
	}
	for _, band := range snap.Bands {
		ops = append(ops, fastview.SetAttrs(band.Id, "points", band.Points))
	}
	return bv.differ.Filter(ops)
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

// Parse defines the board's svg template. It must be executed with a Snapshot.
func (bv *Board) Parse(
	t *template.Template,
) (name string, err error) {
	name = bv.id
	addedMap := template.FuncMap{
		"num":        formatNum,
		"visibility": visibility,
		// Offsets a pixel coordinate from a cell's center to its corner.
		"corner": func(center float64, scale int) float64 {
			return center - float64(scale)/2
		},
	}
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div style="float:left;">
			{{ $scale := .Scale }}
			<svg id="` + bv.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ .Width }}px"
				height="{{ .Height }}px"
				style="background: black;">
				<defs>
					<pattern id="` + bv.id + `-pattern" patternUnits="userSpaceOnUse"
						x="{{ num (corner .Origin.X $scale) }}"
						y="{{ num (corner .Origin.Y $scale) }}"
						width="{{ mult $scale 2 }}" height="{{ mult $scale 2 }}">
						<rect x="0" y="0" width="{{ $scale }}" height="{{ $scale }}" fill="hsl(0, 0%, 12%)"/>
						<rect x="{{ $scale }}" y="0" width="{{ $scale }}" height="{{ $scale }}" fill="hsl(0, 0%, 6%)"/>
						<rect x="0" y="{{ $scale }}" width="{{ $scale }}" height="{{ $scale }}" fill="hsl(0, 0%, 6%)"/>
						<rect x="{{ $scale }}" y="{{ $scale }}" width="{{ $scale }}" height="{{ $scale }}" fill="hsl(0, 0%, 12%)"/>
					</pattern>
					{{ range .Bands }}
					<marker id="{{ .Id }}-dot" markerWidth="6" markerHeight="6" refX="3" refY="3" markerUnits="userSpaceOnUse">
						<circle cx="3" cy="3" r="3" fill="hsl({{ .Hue }}, 90%, 55%)"/>
					</marker>
					{{ end }}
				</defs>
				<rect id="` + bv.id + `-checkers" fill="url(#` + bv.id + `-pattern)"
					x="{{ num .Board.X }}" y="{{ num .Board.Y }}"
					width="{{ num .Board.Width }}" height="{{ num .Board.Height }}"/>
				{{ range .Bands }}
				<polyline id="{{ .Id }}" points="{{ .Points }}" fill="none"
					stroke="hsl({{ .Hue }}, 50%, 80%)" stroke-width="1"
					marker-start="url(#{{ .Id }}-dot)" marker-mid="url(#{{ .Id }}-dot)" marker-end="url(#{{ .Id }}-dot)"/>
				{{ end }}
				<circle id="knight-final" cx="{{ num .Final.X }}" cy="{{ num .Final.Y }}" r="9"
					fill="hsl(0, 100%, 50%)" visibility="{{ visibility .Done }}"/>
				<circle id="knight-marker" cx="{{ num .Knight.X }}" cy="{{ num .Knight.Y }}" r="8"
					fill="white" stroke="black" stroke-width="2"/>
				<text id="knight-glyph" x="{{ num .Knight.X }}" y="{{ num .Knight.Y }}"
					font-size="16" text-anchor="middle" dominant-baseline="central">&#9822;</text>
			</svg>
		</div>
		{{ end }}`)
	return
}
