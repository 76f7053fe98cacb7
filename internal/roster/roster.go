// Package roster holds the static list of monitored devices. The default
// roster is compiled in; deployments may override it with a TOML file.
package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Entry identifies one monitored device.
type Entry struct {
	Name    string `toml:"name" json:"name"`
	Address string `toml:"address" json:"ip"`
}

// IsColor reports whether the entry is treated as a color device: its name
// contains the substring "color", case-insensitively.
func (e Entry) IsColor() bool {
	return strings.Contains(strings.ToLower(e.Name), "color")
}

// Default returns the compiled-in device roster.
func Default() []Entry {
	return []Entry{
		{Name: "Oneill3rdfloorprinter01.bc.edu", Address: "136.167.67.130"},
		{Name: "Oneill3rdfloorprinter02.bc.edu", Address: "136.167.66.108"},
		{Name: "Oneill3rdfloorprinter03.bc.edu", Address: "136.167.67.32"},
		{Name: "Oneill3rdfloorprinter04.bc.edu", Address: "136.167.69.110"},
		{Name: "Oneill3rdfloorprinter05.bc.edu", Address: "136.167.69.140"},
		{Name: "oneill3rdfloorprinter06.bc.edu", Address: "136.167.66.240"},
		{Name: "oneill3rdfloorcolorprinter01.bc.edu", Address: "136.167.67.81"},
		{Name: "2150comm.bc.edu", Address: "136.167.214.175"},
		{Name: "WIHD", Address: "136.167.66.220"},
	}
}

type rosterFile struct {
	Printer []Entry `toml:"printer"`
}

// LoadFile parses a TOML roster file containing [[printer]] tables with
// name and address keys. Empty files and files with no printer tables are
// rejected so a bad override cannot silently empty the dashboard.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var parsed rosterFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}
	if len(parsed.Printer) == 0 {
		return nil, fmt.Errorf("roster file %s defines no printers", path)
	}

	for i, e := range parsed.Printer {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("roster file %s: printer %d has no name", path, i+1)
		}
	}
	return parsed.Printer, nil
}

// Load returns the roster from the given file if path is non-empty,
// otherwise searches the standard locations for roster.toml and finally
// falls back to the compiled-in default.
func Load(path string) ([]Entry, error) {
	if path != "" {
		return LoadFile(path)
	}
	for _, candidate := range searchPaths("roster.toml") {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
	}
	return Default(), nil
}

// searchPaths mirrors the config lookup order used elsewhere: system
// directory, executable directory, then the working directory.
func searchPaths(filename string) []string {
	paths := []string{filepath.Join("/etc/printer-monitor", filename)}
	if exePath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exePath), filename))
	}
	paths = append(paths, filepath.Join(".", filename))
	return paths
}
