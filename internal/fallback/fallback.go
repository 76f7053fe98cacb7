// Package fallback generates placeholder device reports for use when no
// bridge push has ever landed. Two policies exist: a deterministic
// readiness variant served by the relay, and a randomized demo variant used
// by dashboard clients when the relay itself is unreachable. A process
// picks one policy and never mixes them within a response.
package fallback

import (
	"math/rand"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

// Generator produces one placeholder report per roster entry. Generation is
// pure with respect to the roster: no network I/O, ever.
type Generator interface {
	Generate(entries []roster.Entry) []report.Device
}

// demoLocation is the location placeholder stamped on demo reports.
const demoLocation = "O'Neill Library 3rd Floor"

// Readiness is the deterministic policy: every device online with fixed
// supply levels and clean trays. Safe for health/readiness probing because
// repeated calls yield identical data.
type Readiness struct{}

// Generate implements Generator.
func (Readiness) Generate(entries []roster.Entry) []report.Device {
	devices := make([]report.Device, 0, len(entries))
	for _, e := range entries {
		rt := 50
		devices = append(devices, report.Device{
			Name:         e.Name,
			Address:      e.Address,
			Status:       report.StatusOnline,
			ResponseTime: &rt,
			Toners:       fixedToners(e.IsColor()),
			Trays: []report.Tray{
				{Name: "Tray 1", Status: "OK"},
				{Name: "Tray 2", Status: "OK"},
				{Name: "Manual Feed", Status: "OK"},
			},
			Method:    "demo",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return devices
}

func fixedToners(color bool) []report.Toner {
	if color {
		return []report.Toner{
			{Color: "Black", Level: 65},
			{Color: "Cyan", Level: 45},
			{Color: "Magenta", Level: 55},
			{Color: "Yellow", Level: 35},
		}
	}
	return []report.Toner{{Color: "Black", Level: 75}}
}

// Demo is the randomized policy: roughly 70% of devices online with jittered
// supply levels and tray states, for visually plausible placeholder cards.
type Demo struct {
	rng *rand.Rand
}

// NewDemo creates a Demo generator with its own time-seeded source.
func NewDemo() *Demo {
	return NewDemoWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewDemoWithSource creates a Demo generator using the given source, so
// tests can pin the sequence.
func NewDemoWithSource(rng *rand.Rand) *Demo {
	return &Demo{rng: rng}
}

// Generate implements Generator.
func (d *Demo) Generate(entries []roster.Entry) []report.Device {
	trayOne := []string{"OK", "OK", "OK", "LOW"}
	trayTwo := []string{"OK", "EMPTY", "OK", "LOW"}

	devices := make([]report.Device, 0, len(entries))
	for _, e := range entries {
		online := d.rng.Float64() > 0.3

		dev := report.Device{
			Name:     e.Name,
			Address:  e.Address,
			Location: demoLocation,
			Status:   report.StatusOffline,
			Toners:   d.randomToners(e.IsColor()),
			Trays: []report.Tray{
				{Name: "Tray 1", Status: trayOne[d.rng.Intn(len(trayOne))]},
				{Name: "Tray 2", Status: trayTwo[d.rng.Intn(len(trayTwo))]},
				{Name: "Manual Feed", Status: "OK"},
			},
			Method:    "demo",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if online {
			dev.Status = report.StatusOnline
			rt := d.rng.Intn(100) + 50
			dev.ResponseTime = &rt
		}
		devices = append(devices, dev)
	}
	return devices
}

func (d *Demo) randomToners(color bool) []report.Toner {
	if color {
		return []report.Toner{
			{Color: "Black", Level: d.rng.Intn(40) + 30},
			{Color: "Cyan", Level: d.rng.Intn(60) + 10},
			{Color: "Magenta", Level: d.rng.Intn(70) + 5},
			{Color: "Yellow", Level: d.rng.Intn(80) + 15},
		}
	}
	return []report.Toner{{Color: "Black", Level: d.rng.Intn(50) + 30}}
}
