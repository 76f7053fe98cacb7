// The monitor command is a terminal dashboard client: it polls the relay on
// a fixed interval, reconciles per-device cards in place, and falls back to
// locally generated demo data when the relay is unreachable. Press Enter
// for a manual refresh, Ctrl+C to quit.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/dashboard"
	"github.com/bozocamp/bc-printer-monitor-render/internal/fallback"
	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

func main() {
	serverURL := flag.String("server", "http://localhost:10000", "Relay server base URL")
	rosterPath := flag.String("roster", "", "Path to roster TOML file")
	interval := flag.Duration("interval", 120*time.Second, "Poll interval")
	logLevel := flag.String("log-level", "warn", "Log level (error, warn, info, debug)")
	noClear := flag.Bool("no-clear", false, "Append output instead of redrawing in place")
	flag.Parse()

	monLogger := logger.New(logger.ParseLevel(*logLevel), 200)

	entries, err := roster.Load(*rosterPath)
	if err != nil {
		log.Fatal(err)
	}

	board, err := dashboard.NewBoard(entries, monLogger)
	if err != nil {
		log.Fatal(err)
	}

	poller := dashboard.NewPoller(dashboard.PollerConfig{
		ServerURL:   *serverURL,
		Roster:      entries,
		Board:       board,
		Demo:        fallback.NewDemo(),
		Logger:      monLogger,
		Out:         os.Stdout,
		Interval:    *interval,
		ClearScreen: !*noClear,
	})
	poller.Start()
	defer poller.Stop()

	// Enter triggers a manual refresh; overlapping triggers are dropped by
	// the poller's single-flight guard.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			poller.Refresh()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
