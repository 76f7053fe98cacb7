// Package bridge implements the trusted on-prem collector: it probes each
// roster device for reachability, queries Printer-MIB supply and tray data
// over SNMP, and pushes full snapshots to the relay server.
package bridge

import (
	"fmt"
	"os"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Printer-MIB and MIB-II OIDs used by the collector.
const (
	oidSysLocation       = "1.3.6.1.2.1.1.6.0"
	oidSupplyDescription = "1.3.6.1.2.1.43.11.1.1.6"
	oidSupplyMaxCapacity = "1.3.6.1.2.1.43.11.1.1.8"
	oidSupplyLevel       = "1.3.6.1.2.1.43.11.1.1.9"
	oidInputName         = "1.3.6.1.2.1.43.8.2.1.13"
	oidInputMaxCapacity  = "1.3.6.1.2.1.43.8.2.1.9"
	oidInputCurrentLevel = "1.3.6.1.2.1.43.8.2.1.10"
)

// SNMPConfig holds SNMP connection parameters.
type SNMPConfig struct {
	Community string
	Version   gosnmp.SnmpVersion
	Timeout   time.Duration
}

// SNMPClient is the subset of SNMP operations the collector needs. It is an
// interface so tests can substitute canned responses.
type SNMPClient interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Walk(rootOid string, walkFn gosnmp.WalkFunc) error
	Close() error
}

type gosnmpClient struct {
	conn *gosnmp.GoSNMP
}

func (c *gosnmpClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(oids)
}

func (c *gosnmpClient) Walk(rootOid string, walkFn gosnmp.WalkFunc) error {
	return c.conn.Walk(rootOid, walkFn)
}

func (c *gosnmpClient) Close() error {
	return c.conn.Conn.Close()
}

// GetSNMPConfig loads SNMP settings from the environment, defaulting to
// community "public" and version 2c.
func GetSNMPConfig() (*SNMPConfig, error) {
	community := os.Getenv("SNMP_COMMUNITY")
	if community == "" {
		community = "public"
	}

	version := gosnmp.Version2c
	switch os.Getenv("SNMP_VERSION") {
	case "", "2c":
	case "1":
		version = gosnmp.Version1
	case "3":
		version = gosnmp.Version3
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", os.Getenv("SNMP_VERSION"))
	}

	return &SNMPConfig{
		Community: community,
		Version:   version,
		Timeout:   5 * time.Second,
	}, nil
}

func newSNMPClientImpl(cfg *SNMPConfig, target string) (SNMPClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("SNMP config required")
	}
	if target == "" {
		return nil, fmt.Errorf("target address required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	conn := &gosnmp.GoSNMP{
		Target:    target,
		Port:      161,
		Community: cfg.Community,
		Version:   cfg.Version,
		Timeout:   timeout,
		Retries:   1,
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	return &gosnmpClient{conn: conn}, nil
}

// NewSNMPClientFunc creates SNMP clients; replace it in tests to inject a
// mock.
var NewSNMPClientFunc = newSNMPClientImpl

// NewSNMPClient opens an SNMP session to the target device.
func NewSNMPClient(cfg *SNMPConfig, target string) (SNMPClient, error) {
	return NewSNMPClientFunc(cfg, target)
}
