package fastview

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

type echoView struct {
	updates <-chan []EleUpdate
}

func (ev *echoView) Updates() <-chan []EleUpdate {
	return ev.updates
}

func (ev *echoView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "echo" }}<p id="echo"></p>{{ end }}`)
	return "echo", err
}

func newEchoView(eleId string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vms <-chan string) ViewComponent {
		return &echoView{
			updates: channerics.Convert(done, vms, func(vm string) []EleUpdate {
				return []EleUpdate{SetText(eleId, vm)}
			}),
		}
	}
}

func TestViewBuilder(t *testing.T) {
	Convey("When views are built", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Convey("When no views were added Build fails", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(make(chan int), func(i int) string { return "" }).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("When no model was given Build fails", func() {
			_, err := NewViewBuilder[int, string]().
				WithView(newEchoView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("When the builder succeeds every view receives each converted item", func() {
			input := make(chan int)
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, func(i int) string { return strings.Repeat("x", i) }).
				WithView(newEchoView("a")).
				WithView(newEchoView("b")).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)

			go func() { input <- 3 }()
			So(<-views[0].Updates(), ShouldResemble, []EleUpdate{SetText("a", "xxx")})
			So(<-views[1].Updates(), ShouldResemble, []EleUpdate{SetText("b", "xxx")})
		})
	})
}

func TestDiffer(t *testing.T) {
	Convey("When updates pass through a differ", t, func() {
		differ := NewDiffer()

		Convey("When an element is seen for the first time it passes", func() {
			first := []EleUpdate{SetText("a", "1"), SetAttrs("b", "cx", "10", "cy", "20")}
			So(differ.Filter(first), ShouldResemble, first)

			Convey("When the same updates are repeated nothing passes", func() {
				So(differ.Filter(first), ShouldBeEmpty)
			})

			Convey("When one element changes only it passes", func() {
				next := []EleUpdate{SetText("a", "1"), SetAttrs("b", "cx", "11", "cy", "20")}
				So(differ.Filter(next), ShouldResemble, []EleUpdate{SetAttrs("b", "cx", "11", "cy", "20")})
			})
		})
	})
}

func TestSetAttrs(t *testing.T) {
	Convey("When attributes are set from key-value pairs", t, func() {
		update := SetAttrs("marker", "cx", "1", "cy", "2", "dangling")
		So(update.EleId, ShouldEqual, "marker")
		So(update.Ops, ShouldResemble, []Op{{Key: "cx", Value: "1"}, {Key: "cy", Value: "2"}})
	})
}

func TestClient(t *testing.T) {
	Convey("When a web client connects", t, func() {
		updates := make(chan []EleUpdate, 1)
		messages := make(chan string, 1)
		synced := make(chan error, 1)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cli, err := NewClient(updates, messages, w, r)
			if err != nil {
				synced <- err
				return
			}
			synced <- cli.Sync()
		}))
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("When updates are published the client receives them as json", func() {
			sent := []EleUpdate{SetText("stats-final", "2,084")}
			updates <- sent

			received := []EleUpdate{}
			So(conn.SetReadDeadline(time.Now().Add(5*time.Second)), ShouldBeNil)
			So(conn.ReadJSON(&received), ShouldBeNil)
			So(received, ShouldResemble, sent)
		})

		Convey("When the client sends a key it is forwarded", func() {
			So(conn.WriteMessage(websocket.TextMessage, []byte("+")), ShouldBeNil)

			select {
			case msg := <-messages:
				So(msg, ShouldEqual, "+")
			case <-time.After(5 * time.Second):
				So("no message forwarded", ShouldBeEmpty)
			}
		})

		Convey("When the client closes the socket Sync returns without error", func() {
			So(conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")), ShouldBeNil)

			select {
			case err := <-synced:
				So(err, ShouldBeNil)
			case <-time.After(5 * time.Second):
				So("sync did not return", ShouldBeEmpty)
			}
		})
	})
}
