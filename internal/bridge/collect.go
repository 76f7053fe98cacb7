package bridge

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

// probePorts are tried in order when checking basic reachability: raw
// print, IPP, then the embedded web server.
var probePorts = []int{9100, 631, 80}

// Collector builds one report per roster entry by probing the device and,
// where possible, querying it over SNMP.
type Collector struct {
	snmpCfg     *SNMPConfig
	log         *logger.Logger
	dialTimeout time.Duration

	// dial is a test seam over net.DialTimeout.
	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// NewCollector creates a Collector. A nil SNMP config disables SNMP queries
// and reports plain reachability only.
func NewCollector(snmpCfg *SNMPConfig, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.New(logger.WARN, 100)
	}
	return &Collector{
		snmpCfg:     snmpCfg,
		log:         log,
		dialTimeout: 3 * time.Second,
		dial:        net.DialTimeout,
	}
}

// Collect produces the full snapshot for the roster, one report per entry.
func (c *Collector) Collect(entries []roster.Entry) []report.Device {
	devices := make([]report.Device, 0, len(entries))
	for _, e := range entries {
		devices = append(devices, c.collectOne(e))
	}
	return devices
}

func (c *Collector) collectOne(entry roster.Entry) report.Device {
	dev := report.Device{
		Name:      entry.Name,
		Address:   entry.Address,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	port, elapsed := c.probe(entry.Address)
	if port == 0 {
		dev.Status = report.StatusOffline
		dev.ErrorDetail = "no open ports"
		dev.Method = "unreachable"
		c.log.Debug("Device unreachable", "name", entry.Name, "address", entry.Address)
		return dev
	}

	rt := int(elapsed.Milliseconds())
	dev.Status = report.StatusOnline
	dev.ResponseTime = &rt
	dev.ReachablePort = port
	dev.Method = "tcp"

	if c.snmpCfg != nil {
		if err := c.enrichSNMP(&dev, entry.Address); err != nil {
			c.log.Warn("SNMP query failed, keeping reachability result", "name", entry.Name, "error", err)
		} else {
			dev.Method = report.MethodSNMP
		}
	}
	return dev
}

// probe returns the first open probe port and how long the dial took, or
// (0, 0) when every port is closed.
func (c *Collector) probe(address string) (int, time.Duration) {
	for _, port := range probePorts {
		start := time.Now()
		conn, err := c.dial("tcp", fmt.Sprintf("%s:%d", address, port), c.dialTimeout)
		if err != nil {
			continue
		}
		conn.Close()
		return port, time.Since(start)
	}
	return 0, 0
}

// enrichSNMP fills location, toner, and tray data from the device's
// Printer-MIB tables.
func (c *Collector) enrichSNMP(dev *report.Device, address string) error {
	client, err := NewSNMPClient(c.snmpCfg, address)
	if err != nil {
		return err
	}
	defer client.Close()

	if loc, err := c.queryLocation(client); err == nil && loc != "" {
		dev.Location = loc
	}

	toners, err := c.queryToners(client)
	if err != nil {
		return fmt.Errorf("query supplies: %w", err)
	}
	dev.Toners = toners

	trays, err := c.queryTrays(client)
	if err != nil {
		return fmt.Errorf("query trays: %w", err)
	}
	dev.Trays = trays
	return nil
}

func (c *Collector) queryLocation(client SNMPClient) (string, error) {
	packet, err := client.Get([]string{oidSysLocation})
	if err != nil {
		return "", err
	}
	for _, v := range packet.Variables {
		if s := pduString(v); s != "" {
			return s, nil
		}
	}
	return "", nil
}

// queryToners walks the marker supplies table and converts raw levels to
// percentages using each row's max capacity.
func (c *Collector) queryToners(client SNMPClient) ([]report.Toner, error) {
	descriptions := map[int]string{}
	maxima := map[int]int{}
	levels := map[int]int{}

	if err := walkTable(client, oidSupplyDescription, func(idx int, pdu gosnmp.SnmpPDU) {
		descriptions[idx] = pduString(pdu)
	}); err != nil {
		return nil, err
	}
	if err := walkTable(client, oidSupplyMaxCapacity, func(idx int, pdu gosnmp.SnmpPDU) {
		maxima[idx] = pduInt(pdu)
	}); err != nil {
		return nil, err
	}
	if err := walkTable(client, oidSupplyLevel, func(idx int, pdu gosnmp.SnmpPDU) {
		levels[idx] = pduInt(pdu)
	}); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(descriptions))
	for idx := range descriptions {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var toners []report.Toner
	for _, idx := range indexes {
		color := supplyColor(descriptions[idx])
		if color == "" {
			continue
		}
		toners = append(toners, report.Toner{
			Color: color,
			Level: supplyPercent(levels[idx], maxima[idx]),
		})
	}
	return toners, nil
}

// queryTrays walks the input table and derives a coarse tray state from the
// current level versus capacity.
func (c *Collector) queryTrays(client SNMPClient) ([]report.Tray, error) {
	names := map[int]string{}
	maxima := map[int]int{}
	levels := map[int]int{}

	if err := walkTable(client, oidInputName, func(idx int, pdu gosnmp.SnmpPDU) {
		names[idx] = pduString(pdu)
	}); err != nil {
		return nil, err
	}
	if err := walkTable(client, oidInputMaxCapacity, func(idx int, pdu gosnmp.SnmpPDU) {
		maxima[idx] = pduInt(pdu)
	}); err != nil {
		return nil, err
	}
	if err := walkTable(client, oidInputCurrentLevel, func(idx int, pdu gosnmp.SnmpPDU) {
		levels[idx] = pduInt(pdu)
	}); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(names))
	for idx := range names {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var trays []report.Tray
	for _, idx := range indexes {
		name := names[idx]
		if name == "" {
			name = fmt.Sprintf("Tray %d", idx)
		}
		trays = append(trays, report.Tray{
			Name:   name,
			Status: trayToken(levels[idx], maxima[idx]),
		})
	}
	return trays, nil
}

// walkTable walks one table column, extracting the trailing row index from
// each returned OID.
func walkTable(client SNMPClient, root string, fn func(idx int, pdu gosnmp.SnmpPDU)) error {
	return client.Walk(root, func(pdu gosnmp.SnmpPDU) error {
		parts := strings.Split(pdu.Name, ".")
		if len(parts) == 0 {
			return nil
		}
		idx := 0
		fmt.Sscanf(parts[len(parts)-1], "%d", &idx)
		fn(idx, pdu)
		return nil
	})
}

// supplyColor classifies a marker supply description into one of the four
// toner channels, or "" for non-toner consumables (drums, fusers, waste).
func supplyColor(description string) string {
	lower := strings.ToLower(description)
	if strings.Contains(lower, "waste") || strings.Contains(lower, "drum") ||
		strings.Contains(lower, "fuser") || strings.Contains(lower, "belt") {
		return ""
	}
	switch {
	case strings.Contains(lower, "black"), strings.HasSuffix(lower, "k"):
		return "Black"
	case strings.Contains(lower, "cyan"):
		return "Cyan"
	case strings.Contains(lower, "magenta"):
		return "Magenta"
	case strings.Contains(lower, "yellow"):
		return "Yellow"
	}
	return ""
}

// supplyPercent converts a raw supply level to a percentage. Negative
// levels are the Printer-MIB "unknown" codes and map to 0.
func supplyPercent(level, max int) int {
	if level < 0 || max <= 0 {
		return 0
	}
	return level * 100 / max
}

// trayToken derives the free-text tray token the dashboard normalizes.
func trayToken(level, max int) string {
	switch {
	case level == 0:
		return "EMPTY"
	case level < 0 || max <= 0:
		// -3 means "at least one sheet"; other negatives are unknown.
		if level == -3 {
			return "OK"
		}
		return "UNKNOWN"
	case level*100/max <= 20:
		return "LOW"
	default:
		return "OK"
	}
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return ""
	}
}

func pduInt(pdu gosnmp.SnmpPDU) int {
	switch v := pdu.Value.(type) {
	case int:
		return v
	case uint:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	default:
		return 0
	}
}
