package board_views

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	"trapped/animation"
	"trapped/config"
	"trapped/knight"
	"trapped/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

func newConverter(n int) *Converter {
	tour, err := knight.NewTour(n)
	if err != nil {
		panic(err)
	}
	return NewConverter(tour, config.Default().Board)
}

// testFuncs stands in for the func-map the root view provides to its children.
var testFuncs = template.FuncMap{
	"sub":  func(i, j int) int { return i - j },
	"mult": func(i, j int) int { return i * j },
	"max": func(i, j int) int {
		if i > j {
			return i
		}
		return j
	},
}

func TestConvert(t *testing.T) {
	Convey("Given a converter for the ten cell tour", t, func() {
		cv := newConverter(10)

		Convey("The first frame shows the knight on cell 1 at the canvas center", func() {
			snap := cv.Convert(animation.Frame{Index: 0, Length: 10, Speed: 1})
			So(snap.Origin, ShouldResemble, Point{X: 450, Y: 450})
			So(snap.Knight, ShouldResemble, Point{X: 450, Y: 450})
			So(snap.Current, ShouldEqual, 1)
			So(snap.Step, ShouldEqual, 0)
			So(snap.Length, ShouldEqual, 10)
			So(snap.N, ShouldEqual, 10)
			So(snap.Last, ShouldEqual, 8)
			// Radius is the margin alone.
			So(snap.Board, ShouldResemble, Rect{X: 435, Y: 435, Width: 30, Height: 30})
			So(snap.Bands, ShouldHaveLength, 10)
			So(snap.Bands[0].Points, ShouldEqual, "450,450")
			So(snap.Bands[1].Points, ShouldBeEmpty)
		})

		Convey("The second frame shows the knight's first move", func() {
			snap := cv.Convert(animation.Frame{Index: 1, Length: 10, Speed: 1})
			So(snap.Knight, ShouldResemble, Point{X: 462, Y: 444})
			So(snap.Current, ShouldEqual, 10)
			So(snap.Board, ShouldResemble, Rect{X: 423, Y: 423, Width: 54, Height: 54})
			So(snap.Bands[1], ShouldResemble, Band{Id: "trail1", Hue: 36, Points: "450,450 462,444"})
			So(snap.Bands[2].Points, ShouldBeEmpty)
		})

		Convey("The final point is the last cell of the path whatever the frame", func() {
			for _, i := range []int{0, 4, 9} {
				snap := cv.Convert(animation.Frame{Index: i, Length: 10})
				So(snap.Final, ShouldResemble, Point{X: 450, Y: 444})
			}
		})

		Convey("Frames beyond the path are clamped to its end", func() {
			snap := cv.Convert(animation.Frame{Index: 50, Length: 10, Done: true})
			So(snap.Step, ShouldEqual, 9)
			So(snap.Current, ShouldEqual, 8)
			So(snap.Knight, ShouldResemble, snap.Final)
			So(snap.Done, ShouldBeTrue)
			for _, band := range snap.Bands {
				So(band.Points, ShouldNotBeEmpty)
			}
		})
	})

	Convey("Given a long tour", t, func() {
		cv := newConverter(3000)

		Convey("The trail is split into a fixed number of bands", func() {
			snap := cv.Convert(animation.Frame{Index: 1969, Length: 1970})
			So(snap.Bands, ShouldHaveLength, numBands)
			So(snap.Bands[0].Hue, ShouldEqual, 0)
			So(snap.Bands[numBands-1].Hue, ShouldBeLessThan, 360)
			So(snap.EdgeLimited, ShouldBeTrue)
		})

		Convey("The board never exceeds the max radius", func() {
			board := config.Default().Board
			snap := cv.Convert(animation.Frame{Index: 1969, Length: 1970})
			So(snap.Board.Width, ShouldBeLessThanOrEqualTo, float64((2*board.MaxRadius+1)*board.Scale))
		})
	})
}

func TestBoard(t *testing.T) {
	Convey("Given a board view", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cv := newConverter(10)
		snaps := make(chan Snapshot)
		board := NewBoard(ctx.Done(), snaps)

		Convey("The first snapshot updates every element", func() {
			snaps <- cv.Convert(animation.Frame{Index: 1, Length: 10, Speed: 1})
			updates := <-board.Updates()
			ids := map[string][]fastview.Op{}
			for _, update := range updates {
				ids[update.EleId] = update.Ops
			}
			So(ids, ShouldContainKey, "board-checkers")
			So(ids, ShouldContainKey, "knight-final")
			So(ids, ShouldContainKey, "trail9")
			So(ids["knight-marker"], ShouldResemble, []fastview.Op{
				{Key: "cx", Value: "462"},
				{Key: "cy", Value: "444"},
			})

			Convey("Later snapshots only update what changed", func() {
				snaps <- cv.Convert(animation.Frame{Index: 2, Length: 10, Speed: 1})
				updates := <-board.Updates()
				ids := map[string]bool{}
				for _, update := range updates {
					ids[update.EleId] = true
				}
				So(ids, ShouldContainKey, "knight-marker")
				So(ids, ShouldContainKey, "trail2")
				So(ids, ShouldNotContainKey, "trail0")
				So(ids, ShouldNotContainKey, "trail9")
				So(ids, ShouldNotContainKey, "knight-final")
			})
		})

		Convey("The board template renders a snapshot", func() {
			root := template.New("root").Funcs(testFuncs)
			name, err := board.Parse(root)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "board")

			var buf bytes.Buffer
			err = root.ExecuteTemplate(&buf, name, cv.Convert(animation.Frame{Index: 9, Length: 10, Done: true}))
			So(err, ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, `id="knight-marker"`)
			So(html, ShouldContainSubstring, `id="trail9"`)
			So(html, ShouldContainSubstring, `visibility="visible"`)
			So(html, ShouldContainSubstring, `width="12"`)
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a stats view", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cv := newConverter(3000)
		snaps := make(chan Snapshot)
		stats := NewStats(ctx.Done(), snaps)

		Convey("Counters are formatted with separators", func() {
			snaps <- cv.Convert(animation.Frame{Index: 0, Length: 1970, Speed: 3})
			updates := <-stats.Updates()
			So(updates, ShouldContain, fastview.SetText("stats-n", "3,000"))
			So(updates, ShouldContain, fastview.SetText("stats-visited", "1"))
			So(updates, ShouldContain, fastview.SetText("stats-moves", "0"))
			So(updates, ShouldContain, fastview.SetText("stats-current", "1"))
			So(updates, ShouldContain, fastview.SetText("stats-final", "2,978"))
			So(updates, ShouldContain, fastview.SetText("stats-status", "playing ×3"))

			Convey("Only the changed text is sent afterwards", func() {
				snaps <- cv.Convert(animation.Frame{Index: 0, Length: 1970, Speed: 3, Paused: true})
				So(<-stats.Updates(), ShouldResemble, []fastview.EleUpdate{
					fastview.SetText("stats-status", "paused"),
				})
			})
		})

		Convey("Visited and moves follow the knight until the walk is done", func() {
			snaps <- cv.Convert(animation.Frame{Index: 0, Length: 1970, Speed: 1})
			<-stats.Updates()

			snaps <- cv.Convert(animation.Frame{Index: 1199, Length: 1970, Speed: 1})
			updates := <-stats.Updates()
			So(updates, ShouldContain, fastview.SetText("stats-visited", "1,200"))
			So(updates, ShouldContain, fastview.SetText("stats-moves", "1,199"))

			snaps <- cv.Convert(animation.Frame{Index: 1969, Length: 1970, Speed: 1, Done: true})
			updates = <-stats.Updates()
			So(updates, ShouldContain, fastview.SetText("stats-visited", "1,970"))
			So(updates, ShouldContain, fastview.SetText("stats-moves", "1,969"))
		})

		Convey("The stats template renders a snapshot", func() {
			root := template.New("root").Funcs(testFuncs)
			name, err := stats.Parse(root)
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			err = root.ExecuteTemplate(&buf, name, cv.Convert(animation.Frame{Index: 1969, Length: 1970, Done: true}))
			So(err, ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "2,978")
			So(buf.String(), ShouldContainSubstring, `id="stats-visited">1,970<`)
			So(buf.String(), ShouldContainSubstring, "trapped at the spiral&#39;s edge")
		})
	})

	Convey("The visited count is live while playing and the whole path once done", t, func() {
		So(visited(Snapshot{Step: 0, Length: 10}), ShouldEqual, 1)
		So(visited(Snapshot{Step: 4, Length: 10}), ShouldEqual, 5)
		So(visited(Snapshot{Step: 9, Length: 10, Done: true}), ShouldEqual, 10)
		So(visited(Snapshot{}), ShouldEqual, 0)
	})

	Convey("The status reflects playback", t, func() {
		So(status(Snapshot{Speed: 2}), ShouldEqual, "playing ×2")
		So(status(Snapshot{Paused: true}), ShouldEqual, "paused")
		So(status(Snapshot{Done: true}), ShouldEqual, "trapped")
		So(status(Snapshot{Done: true, Paused: true, EdgeLimited: true}), ShouldEqual, "trapped at the spiral's edge")
	})
}
