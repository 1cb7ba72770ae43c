package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"trapped/config"
	"trapped/knight"
	"trapped/server"
	"trapped/spiral"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds the state shared by every command: the loaded config and the logger.
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "trapped",
		Short: "Walk a knight over a numbered square spiral until it is trapped",
		Long: `Trapped numbers the squares of an infinite board along a spiral, starting from 1,
and moves a chess knight to the lowest-numbered unvisited square it can reach until it has none left.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a yaml config file (defaults are used if unset)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")

	rootCmd.AddCommand(
		a.walkCmd(),
		a.spiralCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// load reads the config and sets up logging to the command's stderr.
func (a *app) load(cmd *cobra.Command) (err error) {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.cfg, err = config.FromYaml(a.configPath); err != nil {
		return err
	}
	a.logger.Debug("config loaded", "path", a.configPath, "size", a.cfg.Spiral.Size)
	return nil
}

// newTour validates the config, with any flag overrides applied, and walks the knight.
func (a *app) newTour() (*knight.Tour, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	start := time.Now()
	tour, err := knight.NewTour(a.cfg.Spiral.Size)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("tour walked",
		"size", tour.N,
		"visited", len(tour.Path),
		"elapsed", time.Since(start))
	return tour, nil
}

func (a *app) walkCmd() *cobra.Command {
	var (
		size      int
		printPath bool
	)

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk the knight and print a summary of where it was trapped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("size") {
				a.cfg.Spiral.Size = size
			}

			tour, err := a.newTour()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeSummary(out, tour)
			if printPath {
				writePath(out, tour.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 0, "number of spiral squares (overrides the config)")
	cmd.Flags().BoolVar(&printPath, "path", false, "print every square of the path")
	return cmd
}

func writeSummary(w io.Writer, tour *knight.Tour) {
	stats := tour.Stats()
	fmt.Fprintf(w, "%-9s%s\n", "N:", humanize.Comma(int64(stats.N)))
	fmt.Fprintf(w, "%-9s%s\n", "Visited:", humanize.Comma(int64(stats.Visited)))
	fmt.Fprintf(w, "%-9s%s\n", "Moves:", humanize.Comma(int64(stats.Moves)))
	fmt.Fprintf(w, "%-9s%s\n", "Final:", humanize.Comma(int64(stats.Final)))

	switch {
	case tour.Trapped() && tour.EdgeLimited():
		fmt.Fprintln(w, "Trapped at the spiral's edge: a larger spiral may extend the walk.")
	case tour.Trapped():
		fmt.Fprintln(w, "Trapped.")
	}
}

func writePath(w io.Writer, path knight.Path) {
	labels := make([]string, len(path))
	for i, k := range path {
		labels[i] = strconv.Itoa(k)
	}
	fmt.Fprintln(w, strings.Join(labels, " "))
}

func (a *app) spiralCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "spiral",
		Short: "Print the spiral numbering as a grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("size") {
				a.cfg.Spiral.Size = size
			}

			idx, err := spiral.Generate(a.cfg.Spiral.Size)
			if err != nil {
				return err
			}
			return spiral.ShowGrid(cmd.OutOrStdout(), idx)
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 0, "number of spiral squares to print (overrides the config)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var (
		size int
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the animated walk over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("size") {
				a.cfg.Spiral.Size = size
			}
			if flags.Changed("host") {
				a.cfg.Server.Host = host
			}
			if flags.Changed("port") {
				a.cfg.Server.Port = port
			}

			tour, err := a.newTour()
			if err != nil {
				return err
			}

			srv, err := server.NewServer(a.cfg, tour, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 0, "number of spiral squares (overrides the config)")
	cmd.Flags().StringVar(&host, "host", "", "the host ip (overrides the config)")
	cmd.Flags().IntVar(&port, "port", 0, "the host port (overrides the config)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Overrides the root hook: no config is loaded.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "trapped", version)
		},
	}
}
