// The bridge command is the trusted on-prem collector: it probes the
// roster devices, queries them over SNMP where possible, and pushes full
// snapshots to the relay server. It can run in the foreground or be
// installed as a system service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kardianos/service"

	"github.com/bozocamp/bc-printer-monitor-render/internal/bridge"
	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

var (
	serverURL  = flag.String("server", "http://localhost:10000", "Relay server base URL")
	rosterPath = flag.String("roster", "", "Path to roster TOML file")
	interval   = flag.Duration("interval", 60*time.Second, "Collection interval")
	logLevel   = flag.String("log-level", "info", "Log level (error, warn, info, debug)")
	noSNMP     = flag.Bool("no-snmp", false, "Skip SNMP queries, report reachability only")
	svcAction  = flag.String("service", "", "Service control: install, uninstall, start, stop, run")
)

func main() {
	flag.Parse()

	if *svcAction != "" {
		runService(*svcAction)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	runBridge(ctx)
}

func runBridge(ctx context.Context) {
	bridgeLogger := logger.New(logger.ParseLevel(*logLevel), 500)

	entries, err := roster.Load(*rosterPath)
	if err != nil {
		log.Fatal(err)
	}
	bridgeLogger.Info("Bridge starting", "printers", len(entries), "server", *serverURL)

	var snmpCfg *bridge.SNMPConfig
	if !*noSNMP {
		snmpCfg, err = bridge.GetSNMPConfig()
		if err != nil {
			log.Fatal(err)
		}
	}

	worker := bridge.NewWorker(
		bridge.NewCollector(snmpCfg, bridgeLogger),
		bridge.NewPushClient(*serverURL, 30*time.Second),
		entries,
		bridgeLogger,
		bridge.WorkerConfig{Interval: *interval},
	)
	worker.Start()
	defer worker.Stop()

	<-ctx.Done()
	bridgeLogger.Info("Bridge stopping")
}

// program implements service.Interface for running under the platform
// service manager.
type program struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		runBridge(ctx)
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}
	select {
	case <-p.done:
	case <-time.After(30 * time.Second):
	}
	return nil
}

func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "PrinterMonitorBridge",
		DisplayName: "Printer Monitor Bridge",
		Description: "Collects printer status over SNMP and pushes it to the printer monitor relay.",
		Arguments:   []string{"--service", "run"},
		Option: service.KeyValue{
			"Restart":    "on-failure",
			"RestartSec": 5,
		},
	}
}

func runService(action string) {
	svc, err := service.New(&program{}, serviceConfig())
	if err != nil {
		log.Fatal(err)
	}

	switch action {
	case "run":
		if err := svc.Run(); err != nil {
			log.Fatal(err)
		}
	case "install", "uninstall", "start", "stop":
		if err := service.Control(svc, action); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Service %s: OK\n", action)
	default:
		log.Fatalf("unknown service action %q", action)
	}
}
