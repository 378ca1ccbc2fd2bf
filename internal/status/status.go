// Package status renders the lifecycle controller's introspection data,
// grounded on mercator-hq-jupiter's pkg/cli/output.go Formatter pattern,
// narrowed to the one status shape spec §6 names.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// BackendStatus is one row of the status report.
type BackendStatus struct {
	Address           string `json:"address"`
	Available         bool   `json:"available"`
	ActiveConnections int64  `json:"active_connections"`
	Weight            int    `json:"weight"`
}

// Report is the plain-data snapshot returned by the lifecycle controller's
// Status() operation and rendered by the CLI's status subcommand.
type Report struct {
	Running       bool            `json:"running"`
	ListenAddress string          `json:"listen_address"`
	Policy        string          `json:"policy"`
	Backends      []BackendStatus `json:"backends"`
}

// WriteText renders the report as the plain-text summary spec §6 names:
// listen address, policy, and per-backend (address, AVAILABLE|UNAVAILABLE,
// connections, weight).
func (r Report) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "listen: %s\n", r.ListenAddress)
	fmt.Fprintf(&sb, "policy: %s\n", r.Policy)
	for _, b := range r.Backends {
		state := "UNAVAILABLE"
		if b.Available {
			state = "AVAILABLE"
		}
		fmt.Fprintf(&sb, "  %s %s connections=%d weight=%d\n", b.Address, state, b.ActiveConnections, b.Weight)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON renders the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
