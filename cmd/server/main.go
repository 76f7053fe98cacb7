// The server command runs the public relay: it accepts snapshot pushes
// from the bridge, answers dashboard queries (degrading to generated
// placeholder data until a push lands), and serves the embedded web bundle.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"

	"github.com/gorilla/mux"

	"github.com/bozocamp/bc-printer-monitor-render/internal/fallback"
	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/relay"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
	"github.com/bozocamp/bc-printer-monitor-render/internal/snapshot"
)

// Version information (set at build time via -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (error, warn, info, debug)")
	rosterPath := flag.String("roster", "", "Path to roster TOML file (overrides config)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *rosterPath != "" {
		cfg.Roster.Path = *rosterPath
	}
	if env := os.Getenv("PORT"); env != "" && *port == 0 {
		fmt.Sscanf(env, "%d", &cfg.Server.Port)
	}

	log.Printf("Printer monitor relay %s (%s)", Version, GitCommit)
	log.Printf("Go: %s, OS: %s, Arch: %s", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	serverLogger := logger.New(logger.ParseLevel(cfg.Logging.Level), 1000)

	entries, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		serverLogger.Error("Failed to load roster", "error", err)
		log.Fatal(err)
	}
	serverLogger.Info("Roster loaded", "printers", len(entries))

	var gen fallback.Generator = fallback.Readiness{}
	if cfg.Fallback.Mode == "demo" {
		gen = fallback.NewDemo()
	}
	serverLogger.Info("Fallback policy selected", "mode", cfg.Fallback.Mode)

	hub := relay.NewHub()
	defer hub.Stop()

	api := relay.NewAPI(relay.APIOptions{
		Store:     snapshot.New(),
		Roster:    entries,
		Generator: gen,
		Hub:       hub,
		Logger:    serverLogger,
	})

	router := mux.NewRouter()
	api.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	log.Printf("Relay listening on %s", addr)
	log.Printf("Ready for bridge connections")

	if err := http.ListenAndServe(addr, relay.CORSMiddleware(router)); err != nil {
		serverLogger.Error("HTTP server failed", "error", err)
		log.Fatal(err)
	}
}
