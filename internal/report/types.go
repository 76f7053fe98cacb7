// Package report defines the device status report exchanged between the
// bridge collector, the relay server, and dashboard clients, along with the
// render-time normalization rules for toner levels and tray states.
package report

// Status describes device reachability as determined by the collector.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// Toner is a single supply channel with a fill percentage.
type Toner struct {
	Color string `json:"color"`
	Level int    `json:"level"`
}

// Tray is a paper tray with a free-text state token as reported by the
// device (normalized only at render time, see NormalizeTrayStatus).
type Tray struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Device is one status report. Field presence follows the wire contract:
// ResponseTime only accompanies online reports, ErrorDetail only offline
// ones. Nothing here is validated at ingest; consumers defend defensively.
type Device struct {
	Name          string  `json:"name"`
	Address       string  `json:"ip"`
	Status        Status  `json:"status"`
	Location      string  `json:"location,omitempty"`
	ResponseTime  *int    `json:"responseTime,omitempty"` // milliseconds
	ErrorDetail   string  `json:"error,omitempty"`
	Method        string  `json:"method,omitempty"`
	ReachablePort int     `json:"reachablePort,omitempty"`
	Toners        []Toner `json:"toners,omitempty"`
	Trays         []Tray  `json:"trays,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"`
}

// MethodSNMP marks reports backed by a real SNMP query rather than a
// reachability guess or generated data.
const MethodSNMP = "snmp"

// CountOnline returns how many reports carry StatusOnline.
func CountOnline(devices []Device) int {
	n := 0
	for _, d := range devices {
		if d.Status == StatusOnline {
			n++
		}
	}
	return n
}

// CountMethod returns how many reports were obtained via the given method.
func CountMethod(devices []Device, method string) int {
	n := 0
	for _, d := range devices {
		if d.Method == method {
			n++
		}
	}
	return n
}
