package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"trapped/animation"
	"trapped/config"
	"trapped/knight"
	"trapped/server/board_views"
	"trapped/server/fastview"
	"trapped/server/root_view"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	// Time to wait for in-flight requests when shutting down.
	shutdownGracePeriod = 5 * time.Second
	// Key presses are small and rare; a few may be buffered while the player is busy.
	commandBuffer = 8
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trapped_connected_clients",
		Help: "Number of websocket clients currently watching the tour",
	})
	clientErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trapped_client_errors_total",
		Help: "Number of websocket clients that disconnected with an error",
	})
	tourCells = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trapped_tour_cells",
		Help: "Size of the served tour: spiral cells generated and cells visited",
	}, []string{"kind"})
)

// Server serves the tour's page and animates it for every client over its own websocket.
// The tour is shared; each client gets its own player so playback controls are per client.
type Server struct {
	addr      string
	tour      *knight.Tour
	animation config.AnimationConfig
	converter *board_views.Converter
	page      *template.Template
	pageName  string
	router    *mux.Router
	logger    *slog.Logger
}

// NewServer builds the page template and routes for the tour.
func NewServer(
	cfg *config.Config,
	tour *knight.Tour,
	logger *slog.Logger,
) (*Server, error) {
	server := &Server{
		addr:      cfg.Server.Addr(),
		tour:      tour,
		animation: cfg.Animation,
		converter: board_views.NewConverter(tour, cfg.Board),
		logger:    logger,
	}

	var err error
	if server.page, server.pageName, err = parsePage(server.converter); err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/api/tour", server.serveTour).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())
	server.router = router

	stats := tour.Stats()
	tourCells.WithLabelValues("generated").Set(float64(stats.N))
	tourCells.WithLabelValues("visited").Set(float64(stats.Visited))

	return server, nil
}

// parsePage parses the page once; views only need their templates for this,
// so their pipelines are torn down immediately.
func parsePage(converter *board_views.Converter) (*template.Template, string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootView, err := root_view.NewRootView(ctx, nil, converter)
	if err != nil {
		return nil, "", err
	}

	t := template.New("index.html")
	name, err := rootView.Parse(t)
	if err != nil {
		return nil, "", err
	}
	return t, name, nil
}

// Handler returns the server's routes.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              server.addr,
		Handler:           server.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.logger.Info("serving", "addr", server.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		server.logger.Info("server stopped")
		return nil
	})
	return group.Wait()
}

func (server *Server) newPlayer() *animation.Player {
	return animation.NewPlayer(
		len(server.tour.Path),
		server.animation.Speed,
		server.animation.MaxSpeed)
}

// Serve the index.html main page, drawn at the start of the tour.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	snapshot := server.converter.Convert(server.newPlayer().Frame())
	if err := server.page.ExecuteTemplate(w, server.pageName, snapshot); err != nil {
		server.logger.Error("render index", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveWebsocket animates the tour for one client, until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	messages := make(chan string, commandBuffer)
	commands := channerics.Convert(ctx.Done(), messages, func(msg string) animation.Command {
		return animation.Command(msg)
	})
	frames := server.newPlayer().Run(ctx, commands, server.animation.Interval)

	rootView, err := root_view.NewRootView(ctx, frames, server.converter)
	if err != nil {
		server.logger.Error("build views", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cli, err := fastview.NewClient(rootView.Updates(), messages, w, r)
	if err != nil {
		server.logger.Warn("websocket", "error", err)
		return
	}

	connectedClients.Inc()
	defer connectedClients.Dec()
	server.logger.Debug("client connected", "remote", r.RemoteAddr)

	if err := cli.Sync(); err != nil {
		clientErrors.Inc()
		server.logger.Warn("client sync", "remote", r.RemoteAddr, "error", err)
		return
	}
	server.logger.Debug("client disconnected", "remote", r.RemoteAddr)
}

// TourResponse is the json summary of the served tour.
type TourResponse struct {
	knight.Stats
	Trapped     bool  `json:"trapped"`
	EdgeLimited bool  `json:"edgeLimited"`
	Path        []int `json:"path"`
}

func (server *Server) serveTour(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := TourResponse{
		Stats:       server.tour.Stats(),
		Trapped:     server.tour.Trapped(),
		EdgeLimited: server.tour.EdgeLimited(),
		Path:        server.tour.Path,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		server.logger.Error("encode tour", "error", err)
	}
}
