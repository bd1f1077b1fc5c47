package geo

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "eventetl/internal/errors"
)

// Entry maps a network to a place
type Entry struct {
	CIDR    string `yaml:"cidr"`
	Country string `yaml:"country"`
	City    string `yaml:"city"`
}

type route struct {
	prefix netip.Prefix
	label  string
}

// Table resolves addresses against a static list of networks.
// The most specific matching network wins.
type Table struct {
	routes []route
}

// NewTable builds a Table from entries
func NewTable(entries []Entry) (*Table, error) {
	routes := make([]route, 0, len(entries))
	for i, e := range entries {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(e.CIDR))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("entry %d: invalid cidr %q", i, e.CIDR), err)
		}
		routes = append(routes, route{prefix: prefix.Masked(), label: Encode(e.Country, e.City)})
	}

	// longest prefix first; stable keeps file order among equal lengths
	slices.SortStableFunc(routes, func(a, b route) int {
		return b.prefix.Bits() - a.prefix.Bits()
	})

	return &Table{routes: routes}, nil
}

// LoadTable reads a YAML list of entries from path
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to read geo table %s", path), err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse geo table %s", path), err)
	}

	return NewTable(entries)
}

// Lookup implements Locator
func (t *Table) Lookup(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return Sentinel
	}
	addr = addr.Unmap()

	for _, r := range t.routes {
		if r.prefix.Contains(addr) {
			return r.label
		}
	}
	return Sentinel
}

// Len returns the number of networks
func (t *Table) Len() int {
	return len(t.routes)
}
