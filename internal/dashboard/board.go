// Package dashboard renders per-device status cards in the terminal. Cards
// are created once from the roster and updated in place from each report
// batch; reports that match no card are skipped, and cards that receive no
// report keep their last rendering.
package dashboard

import (
	"fmt"
	"sync"

	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

// locationPlaceholder is shown when a report carries no location.
const locationPlaceholder = "Boston College"

// TonerRow is one rendered supply line.
type TonerRow struct {
	Color  string
	Level  int // clamped to [0,100]
	Bucket report.LevelBucket
}

// TrayRow is one rendered tray line. Raw keeps the device's own token for
// display; State drives the styling.
type TrayRow struct {
	Name  string
	Raw   string
	State report.TrayState
}

// Card is the persistent rendering state for one roster device.
type Card struct {
	Key        string
	Name       string
	Address    string
	Status     report.Status
	StatusLine string
	Location   string
	MethodLine string
	Toners     []TonerRow
	Trays      []TrayRow
}

// Stats are the aggregate counters recomputed on every Apply. Offline is
// total minus online, so unknown-status devices count as offline.
type Stats struct {
	Total   int
	Online  int
	Offline int
}

// Board owns the card set and the aggregate counters.
type Board struct {
	mu    sync.Mutex
	cards map[string]*Card
	order []string
	stats Stats
	log   *logger.Logger
}

// NewBoard creates one card per roster entry, keyed by the sanitized device
// name. Rosters whose names collide after sanitization are rejected: two
// devices sharing a card would silently overwrite each other.
func NewBoard(entries []roster.Entry, log *logger.Logger) (*Board, error) {
	if log == nil {
		log = logger.New(logger.WARN, 100)
	}

	b := &Board{
		cards: make(map[string]*Card, len(entries)),
		log:   log,
	}
	for _, e := range entries {
		key := report.CardKey(e.Name)
		if prev, ok := b.cards[key]; ok {
			return nil, fmt.Errorf("roster names %q and %q collide on card key %q", prev.Name, e.Name, key)
		}
		b.cards[key] = &Card{
			Key:        key,
			Name:       e.Name,
			Address:    e.Address,
			Status:     report.StatusUnknown,
			StatusLine: "Checking printer status...",
			Location:   "Loading location...",
			MethodLine: "Method: initializing",
		}
		b.order = append(b.order, key)
	}
	return b, nil
}

// Apply reconciles a report batch onto the cards. Matched cards are updated
// field by field: toner and tray rows are rebuilt from scratch when the
// report carries them and kept as-is when it omits them. Unmatched reports
// are logged and skipped without touching any card.
func (b *Board) Apply(reports []report.Device) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, dev := range reports {
		card, ok := b.cards[report.CardKey(dev.Name)]
		if !ok {
			b.log.Warn("No card for reported device", "name", dev.Name)
			continue
		}
		updateCard(card, dev)
	}

	total := len(reports)
	online := report.CountOnline(reports)
	b.stats = Stats{Total: total, Online: online, Offline: total - online}
}

func updateCard(card *Card, dev report.Device) {
	if dev.Location != "" {
		card.Location = dev.Location
	} else {
		card.Location = locationPlaceholder
	}

	switch dev.Status {
	case report.StatusOnline:
		card.Status = report.StatusOnline
		card.StatusLine = "Online"
		if dev.ResponseTime != nil {
			card.StatusLine += fmt.Sprintf(" (%dms)", *dev.ResponseTime)
		}
	case report.StatusOffline:
		card.Status = report.StatusOffline
		card.StatusLine = "Offline"
		if dev.ErrorDetail != "" {
			card.StatusLine += " - " + dev.ErrorDetail
		}
	default:
		card.Status = report.StatusUnknown
		card.StatusLine = "Unknown"
	}

	method := dev.Method
	if method == "" {
		method = "unknown"
	}
	card.MethodLine = "Method: " + method
	if dev.ReachablePort != 0 {
		card.MethodLine += fmt.Sprintf(" | Port: %d", dev.ReachablePort)
	}

	// A report with no toners/trays field (reachability-only collection)
	// keeps the last-known rows; a present-but-empty list clears them.
	if dev.Toners != nil {
		card.Toners = card.Toners[:0]
		for _, t := range dev.Toners {
			card.Toners = append(card.Toners, TonerRow{
				Color:  t.Color,
				Level:  report.ClampLevel(t.Level),
				Bucket: report.BucketLevel(t.Level),
			})
		}
	}

	if dev.Trays != nil {
		card.Trays = card.Trays[:0]
		for _, t := range dev.Trays {
			card.Trays = append(card.Trays, TrayRow{
				Name:  t.Name,
				Raw:   t.Status,
				State: report.NormalizeTrayStatus(t.Status),
			})
		}
	}
}

// Stats returns the counters from the most recent Apply.
func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Card returns a copy of the card with the given key.
func (b *Board) Card(key string) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	card, ok := b.cards[key]
	if !ok {
		return Card{}, false
	}
	out := *card
	out.Toners = append([]TonerRow(nil), card.Toners...)
	out.Trays = append([]TrayRow(nil), card.Trays...)
	return out, true
}

// Keys returns the card keys in roster order.
func (b *Board) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}
