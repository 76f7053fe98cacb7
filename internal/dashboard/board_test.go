package dashboard

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

var testRoster = []roster.Entry{
	{Name: "color-printer", Address: "10.0.0.1"},
	{Name: "plain-printer", Address: "10.0.0.2"},
}

func quietLogger() *logger.Logger {
	l := logger.New(logger.DEBUG, 100)
	l.SetOutput(io.Discard)
	return l
}

func intPtr(v int) *int { return &v }

func TestNewBoardCreatesCardsFromRoster(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	keys := board.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(keys))
	}

	card, ok := board.Card("color-printer")
	if !ok {
		t.Fatal("expected card for color-printer")
	}
	if card.Status != report.StatusUnknown {
		t.Errorf("initial status = %q, want unknown", card.Status)
	}
	if card.Address != "10.0.0.1" {
		t.Errorf("address = %q", card.Address)
	}
}

func TestNewBoardRejectsKeyCollisions(t *testing.T) {
	t.Parallel()

	colliding := []roster.Entry{
		{Name: "printer.one", Address: "10.0.0.1"},
		{Name: "printer-one", Address: "10.0.0.2"},
	}
	if _, err := NewBoard(colliding, quietLogger()); err == nil {
		t.Fatal("expected error for colliding sanitized names")
	}
}

func TestApplyUpdatesMatchedCard(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{{
		Name:          "Color-Printer", // sanitization makes matching case-insensitive
		Status:        report.StatusOnline,
		Location:      "O'Neill 3rd Floor",
		ResponseTime:  intPtr(42),
		Method:        "snmp",
		ReachablePort: 9100,
		Toners: []report.Toner{
			{Color: "Black", Level: 150},
			{Color: "Cyan", Level: -10},
			{Color: "Magenta", Level: 21},
		},
		Trays: []report.Tray{
			{Name: "Tray 1", Status: "Ready"},
			{Name: "Tray 2", Status: "nearly_empty"},
			{Name: "Manual Feed", Status: "jammed"},
		},
	}})

	card, _ := board.Card("color-printer")
	if card.Status != report.StatusOnline {
		t.Errorf("status = %q, want online", card.Status)
	}
	if card.StatusLine != "Online (42ms)" {
		t.Errorf("status line = %q", card.StatusLine)
	}
	if card.Location != "O'Neill 3rd Floor" {
		t.Errorf("location = %q", card.Location)
	}
	if card.MethodLine != "Method: snmp | Port: 9100" {
		t.Errorf("method line = %q", card.MethodLine)
	}

	if len(card.Toners) != 3 {
		t.Fatalf("toner rows = %d, want 3", len(card.Toners))
	}
	if card.Toners[0].Level != 100 || card.Toners[0].Bucket != report.LevelHigh {
		t.Errorf("black row = %+v, want clamped 100/high", card.Toners[0])
	}
	if card.Toners[1].Level != 0 || card.Toners[1].Bucket != report.LevelLow {
		t.Errorf("cyan row = %+v, want clamped 0/low", card.Toners[1])
	}
	if card.Toners[2].Bucket != report.LevelMedium {
		t.Errorf("magenta bucket = %q, want medium", card.Toners[2].Bucket)
	}

	if len(card.Trays) != 3 {
		t.Fatalf("tray rows = %d, want 3", len(card.Trays))
	}
	if card.Trays[0].State != report.TrayOK || card.Trays[1].State != report.TrayLow || card.Trays[2].State != report.TrayUnknown {
		t.Errorf("tray states = %v %v %v", card.Trays[0].State, card.Trays[1].State, card.Trays[2].State)
	}
	if card.Trays[1].Raw != "nearly_empty" {
		t.Errorf("raw token = %q, should keep the device's own text", card.Trays[1].Raw)
	}
}

func TestApplyRebuildsTonerRowsFromScratch(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{{
		Name:   "color-printer",
		Status: report.StatusOnline,
		Toners: []report.Toner{{Color: "Black", Level: 80}, {Color: "Cyan", Level: 60}},
	}})
	board.Apply([]report.Device{{
		Name:   "color-printer",
		Status: report.StatusOnline,
		Toners: []report.Toner{{Color: "Black", Level: 10}},
	}})

	card, _ := board.Card("color-printer")
	if len(card.Toners) != 1 {
		t.Fatalf("stale toner rows survived rebuild: %+v", card.Toners)
	}
	if card.Toners[0].Level != 10 || card.Toners[0].Bucket != report.LevelLow {
		t.Errorf("row = %+v", card.Toners[0])
	}
}

func TestApplyKeepsRowsWhenReportOmitsThem(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{{
		Name:   "color-printer",
		Status: report.StatusOnline,
		Method: "snmp",
		Toners: []report.Toner{{Color: "Black", Level: 80}, {Color: "Cyan", Level: 60}},
		Trays:  []report.Tray{{Name: "Tray 1", Status: "OK"}},
	}})

	// Reachability-only follow-up, no supply data collected.
	board.Apply([]report.Device{{
		Name:          "color-printer",
		Status:        report.StatusOnline,
		ResponseTime:  intPtr(12),
		Method:        "tcp",
		ReachablePort: 9100,
	}})

	card, _ := board.Card("color-printer")
	if card.StatusLine != "Online (12ms)" {
		t.Errorf("status line = %q, scalar fields should still update", card.StatusLine)
	}
	if len(card.Toners) != 2 {
		t.Fatalf("toner rows = %d, want last-known 2", len(card.Toners))
	}
	if card.Toners[0].Level != 80 || card.Toners[1].Level != 60 {
		t.Errorf("toner rows changed: %+v", card.Toners)
	}
	if len(card.Trays) != 1 || card.Trays[0].Name != "Tray 1" {
		t.Errorf("tray rows = %+v, want last-known Tray 1", card.Trays)
	}

	// A present-but-empty list is a real observation and clears the rows.
	board.Apply([]report.Device{{
		Name:   "color-printer",
		Status: report.StatusOnline,
		Toners: []report.Toner{},
		Trays:  []report.Tray{},
	}})

	card, _ = board.Card("color-printer")
	if len(card.Toners) != 0 || len(card.Trays) != 0 {
		t.Errorf("empty lists should clear rows, got %+v / %+v", card.Toners, card.Trays)
	}
}

func TestApplySkipsUnknownDevice(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	before, _ := board.Card("plain-printer")
	board.Apply([]report.Device{{Name: "rogue-device", Status: report.StatusOnline}})
	after, _ := board.Card("plain-printer")

	if before.StatusLine != after.StatusLine || before.Status != after.Status {
		t.Error("report for unknown device mutated an existing card")
	}
}

func TestApplyOfflineAndUnknownStatus(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{
		{Name: "color-printer", Status: report.StatusOffline, ErrorDetail: "no open ports"},
		{Name: "plain-printer", Status: "bogus"},
	})

	colorCard, _ := board.Card("color-printer")
	if colorCard.StatusLine != "Offline - no open ports" {
		t.Errorf("offline status line = %q", colorCard.StatusLine)
	}
	plainCard, _ := board.Card("plain-printer")
	if plainCard.Status != report.StatusUnknown || plainCard.StatusLine != "Unknown" {
		t.Errorf("unrecognized status should render unknown, got %q/%q", plainCard.Status, plainCard.StatusLine)
	}
}

func TestApplyUsesLocationPlaceholder(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{{Name: "plain-printer", Status: report.StatusOnline}})
	card, _ := board.Card("plain-printer")
	if card.Location != locationPlaceholder {
		t.Errorf("location = %q, want %q", card.Location, locationPlaceholder)
	}
}

func TestStatsCountUnknownAsOffline(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	board.Apply([]report.Device{
		{Name: "color-printer", Status: report.StatusOnline},
		{Name: "plain-printer", Status: report.StatusUnknown},
	})

	stats := board.Stats()
	if stats.Total != 2 || stats.Online != 1 || stats.Offline != 1 {
		t.Errorf("stats = %+v, want total 2 online 1 offline 1", stats)
	}
}

func TestRenderIncludesCardsAndStats(t *testing.T) {
	t.Parallel()

	board, err := NewBoard(testRoster, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	board.Apply([]report.Device{{
		Name:   "color-printer",
		Status: report.StatusOnline,
		Toners: []report.Toner{{Color: "Black", Level: 75}},
		Trays:  []report.Tray{{Name: "Tray 1", Status: "OK"}},
	}})

	var buf bytes.Buffer
	board.Render(&buf)
	out := buf.String()

	for _, want := range []string{"color-printer", "plain-printer", "1 online", "Black", "Tray 1", "75%"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
}
