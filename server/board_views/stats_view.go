package board_views

import (
	"fmt"
	"html/template"

	"trapped/server/fastview"

	"github.com/dustin/go-humanize"
	channerics "github.com/niceyeti/channerics/channels"
)

// Stats is the text panel describing the tour: its size, how far the knight
// got, where it is now and where it ends up.
type Stats struct {
	id      string
	differ  *fastview.Differ
	updates <-chan []fastview.EleUpdate
}

func NewStats(
	done <-chan struct{},
	snapshots <-chan Snapshot,
) (sv *Stats) {
	sv = &Stats{
		id:     "stats",
		differ: fastview.NewDiffer(),
	}
	sv.updates = channerics.Convert(done, snapshots, sv.onUpdate)
	return
}

func (sv *Stats) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *Stats) onUpdate(snap Snapshot) []fastview.EleUpdate {
	return sv.differ.Filter([]fastview.EleUpdate{
		fastview.SetText(sv.id+"-n", humanize.Comma(int64(snap.N))),
		fastview.SetText(sv.id+"-visited", humanize.Comma(int64(visited(snap)))),
		fastview.SetText(sv.id+"-moves", humanize.Comma(int64(max(visited(snap)-1, 0)))),
		fastview.SetText(sv.id+"-current", humanize.Comma(int64(snap.Current))),
		fastview.SetText(sv.id+"-final", humanize.Comma(int64(snap.Last))),
		fastview.SetText(sv.id+"-status", status(snap)),
	})
}

// visited counts the cells drawn so far; once done, the whole path.
func visited(snap Snapshot) int {
	if snap.Done {
		return snap.Length
	}
	return min(snap.Step+1, snap.Length)
}

// status describes the playback state shown under the counters.
func status(snap Snapshot) string {
	switch {
	case snap.Done && snap.EdgeLimited:
		return "trapped at the spiral's edge"
	case snap.Done:
		return "trapped"
	case snap.Paused:
		return "paused"
	default:
		return fmt.Sprintf("playing ×%d", snap.Speed)
	}
}

// Parse defines the stats panel template. It must be executed with a Snapshot.
func (sv *Stats) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	addedMap := template.FuncMap{
		"comma":   func(i int) string { return humanize.Comma(int64(i)) },
		"status":  status,
		"visited": visited,
	}
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="float:left; padding-left: 16px; font-family: monospace; color: white;">
			<table>
				<tr><td>N</td><td id="` + sv.id + `-n">{{ comma .N }}</td></tr>
				<tr><td>Visited</td><td id="` + sv.id + `-visited">{{ comma (visited .) }}</td></tr>
				<tr><td>Moves</td><td id="` + sv.id + `-moves">{{ comma (max (sub (visited .) 1) 0) }}</td></tr>
				<tr><td>Current</td><td id="` + sv.id + `-current">{{ comma .Current }}</td></tr>
				<tr><td>Final</td><td id="` + sv.id + `-final">{{ comma .Last }}</td></tr>
			</table>
			<p id="` + sv.id + `-status">{{ status . }}</p>
			<p>space: pause/resume, +/-: speed</p>
		</div>
		{{ end }}`)
	return
}
