package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/fallback"
	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

// Poller drives the board: it fetches the relay's status endpoint on a
// fixed interval (and on manual refresh), applies the result, and falls
// back to locally generated demo data when the relay cannot be reached.
// Cycles are single-flight: a trigger that lands while a cycle is running
// is dropped.
type Poller struct {
	serverURL string
	entries   []roster.Entry
	board     *Board
	demo      fallback.Generator
	client    *http.Client
	log       *logger.Logger
	out       io.Writer
	interval  time.Duration
	clear     bool

	inFlight  atomic.Bool
	refreshCh chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	ServerURL   string
	Roster      []roster.Entry
	Board       *Board
	Demo        fallback.Generator // local error fallback, demo policy
	Logger      *logger.Logger
	Out         io.Writer
	Interval    time.Duration // default 120s
	HTTPTimeout time.Duration // default 15s
	ClearScreen bool          // redraw in place instead of scrolling
}

// NewPoller creates a Poller with defaults applied.
func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Interval == 0 {
		cfg.Interval = 120 * time.Second
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	if cfg.Demo == nil {
		cfg.Demo = fallback.NewDemo()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New(logger.WARN, 100)
	}

	return &Poller{
		serverURL: cfg.ServerURL,
		entries:   cfg.Roster,
		board:     cfg.Board,
		demo:      cfg.Demo,
		client:    &http.Client{Timeout: cfg.HTTPTimeout},
		log:       cfg.Logger,
		out:       cfg.Out,
		interval:  cfg.Interval,
		clear:     cfg.ClearScreen,
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the poll loop. The first cycle runs immediately.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
}

// Stop halts the loop and waits for any in-flight cycle to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
}

// Refresh requests an immediate cycle. If one is already pending or in
// flight the request is dropped; fetches are idempotent so nothing is lost.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle()
	for {
		select {
		case <-ticker.C:
			p.cycle()
		case <-p.refreshCh:
			p.cycle()
		case <-p.stopCh:
			return
		}
	}
}

// queryResult mirrors the relay's query response envelope.
type queryResult struct {
	Success    bool            `json:"success"`
	Data       []report.Device `json:"data"`
	DataSource string          `json:"dataSource"`
	LastUpdate string          `json:"lastUpdate"`
	Error      string          `json:"error"`
}

func (p *Poller) cycle() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("Poll cycle already in flight, skipping trigger")
		return
	}
	defer p.inFlight.Store(false)

	result, err := p.fetch()
	if err != nil {
		p.log.Warn("Fetching printer data failed", "error", err)
		p.renderFallback()
		return
	}

	p.board.Apply(result.Data)
	p.render(sourceNote(result), "")
}

func (p *Poller) fetch() (*queryResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.client.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]interface{}{"printers": p.entries})
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/api/printers/status", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server responded with status %d", resp.StatusCode)
	}

	var result queryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		if result.Error != "" {
			return nil, fmt.Errorf("server error: %s", result.Error)
		}
		return nil, fmt.Errorf("unknown server error")
	}
	return &result, nil
}

// renderFallback substitutes locally generated demo data so the board is
// never left blank by a relay outage.
func (p *Poller) renderFallback() {
	p.board.Apply(p.demo.Generate(p.entries))
	p.render("Demo Data (local)", "Server unavailable. Using demo data.")
}

func (p *Poller) render(source, notice string) {
	if p.out == nil {
		return
	}
	if p.clear {
		fmt.Fprint(p.out, "\033[2J\033[H")
	}
	if notice != "" {
		fmt.Fprintf(p.out, "%s⚠ %s%s\n\n", colorYellow, notice, colorReset)
	}
	p.board.Render(p.out)
	fmt.Fprintf(p.out, "%sLast updated: %s | %s%s\n",
		colorDim, time.Now().Format("15:04:05"), source, colorReset)
}

func sourceNote(result *queryResult) string {
	switch result.DataSource {
	case "bridge-server":
		if result.LastUpdate != "" {
			return "Real-time Data (Updated: " + result.LastUpdate + ")"
		}
		return "Real-time Data"
	case "demo":
		return "Demo Data - Bridge Server Offline"
	default:
		return "Real-time Data"
	}
}
