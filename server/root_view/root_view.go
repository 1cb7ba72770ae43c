package root_view

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"trapped/animation"
	"trapped/server/board_views"
	"trapped/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// batchRate is the period over which ele-updates are merged before being sent to the client.
const batchRate = 20 * time.Millisecond

// RootView is the main page's index.html, which is the container for all the
// view components, the wiring for their channels, etc.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView creates the main page and the views it contains. The views are
// driven by frames, each converted to a board snapshot once and shared by all views.
func NewRootView(
	ctx context.Context,
	frames <-chan animation.Frame,
	converter *board_views.Converter,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[animation.Frame, board_views.Snapshot]().
		WithContext(ctx).
		WithModel(frames, converter.Convert).
		WithView(func(
			done <-chan struct{},
			snapshots <-chan board_views.Snapshot) fastview.ViewComponent {
			return board_views.NewBoard(done, snapshots)
		}).
		WithView(func(
			done <-chan struct{},
			snapshots <-chan board_views.Snapshot) fastview.ViewComponent {
			return board_views.NewStats(done, snapshots)
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with websocket bootstrap code, and returns its name.
// It also sets up the func-map that child components depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
			"max": func(i, j int) int {
				if i > j {
					return i
				}
				return j
			},
		})

	viewTemplates := []string{}
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			err = parseErr
			return
		}
		viewTemplates = append(viewTemplates, tname)
	}

	// Specify the nested templates
	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += (`{{ template "` + tname + `" . }}`)
	}

	// The main template bootstraps the rest: sets up client websocket and updates, aggregates views.
	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<title>Trapped Knight</title>
			<link rel="icon" href="data:,">
			<!--This is the client bootstrap code by which the server pushes new data to the view via websocket.-->
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};

				// Listen for errors
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// When the server pushes view updates, find these eles and update them.
				ws.onmessage = function (event) {
					items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (ele === null) {
							continue
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}

				// Playback controls are sent to the server, which owns the animation.
				document.addEventListener("keydown", function (event) {
					if (ws.readyState !== WebSocket.OPEN) {
						return
					}
					if (event.key === " " || event.key === "+" || event.key === "-") {
						event.preventDefault()
						ws.send(event.key)
					}
				});
			</script>
		</head>
		<body style="background: #111;">
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates the views' ele-update channels into a single channel,
// and throttles its output.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		batchRate)
}

// batchify batches within the passed time frame before sending, over-writing previously
// received values for the same ele-id. This ensures that redundant updates for the
// same ele-id are not sent, and only the latest values are sent. Pending updates are
// flushed on every tick and when source closes, so the final state is never lost.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		// Order of first appearance, so a batch applies in the order the views sent it.
		order := []string{}
		flush := func() bool {
			if len(data) == 0 {
				return true
			}
			select {
			case output <- slicedVals(order, data):
				data = map[string]fastview.EleUpdate{}
				order = order[:0:0]
				return true
			case <-done:
				return false
			}
		}

		ticker := channerics.NewTicker(done, rate)
		for {
			select {
			case <-done:
				return
			case <-ticker:
				if !flush() {
					return
				}
			case updates, ok := <-source:
				if !ok {
					flush()
					return
				}
				// Intentionally overwrites pre-existing values for an ele-id within this batch's time frame.
				for _, update := range updates {
					if _, seen := data[update.EleId]; !seen {
						order = append(order, update.EleId)
					}
					data[update.EleId] = update
				}
			}
		}
	}()

	return output
}

// returns the values of a map as a slice, in the order of keys
func slicedVals[T1 comparable, T2 any](keys []T1, mp map[T1]T2) (sliced []T2) {
	for _, k := range keys {
		sliced = append(sliced, mp[k])
	}
	return
}
