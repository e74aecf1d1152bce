// Package portslist implements PortsList, spec.md §4.9: the shared model
// for MIDI input/output port lists and the port-map, stopping at the
// object model — no driver is opened here.
package portslist

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Buss is 0..47, with sentinel NullBuss for "no buss"/"not found".
type Buss uint16

const NullBuss Buss = 0xFF

// PortId is an opaque device identifier, with sentinel NoPort.
type PortId uint16

const NoPort PortId = 0xFFFE

// ClockMode mirrors seq66's per-output clocking policy. Disabled also
// represents a missing port in an input-direction list.
type ClockMode int

const (
	Disabled ClockMode = iota
	Off
	Pos
	Mod
)

// PortEntry is one row of a PortsList.
type PortEntry struct {
	Buss     Buss      `json:"buss"`
	Enabled  bool      `json:"enabled"`
	Clock    ClockMode `json:"clock_mode"`
	Name     string    `json:"name"`
	NickName string    `json:"nick_name"`
	Alias    string    `json:"alias"`
}

// PortsList is the buss-keyed table, plus an optional port-map overlay.
type PortsList struct {
	entries map[Buss]*PortEntry
	isMap   bool
}

// New creates an empty list; isMap marks it as a port-map instance (whose
// nick name is the string form of the nominal buss number).
func New(isMap bool) *PortsList {
	return &PortsList{entries: make(map[Buss]*PortEntry), isMap: isMap}
}

// Add inserts or replaces the entry for buss b.
func (pl *PortsList) Add(e PortEntry) {
	pl.entries[e.Buss] = &e
}

// Get returns the entry for b, or nil.
func (pl *PortsList) Get(b Buss) *PortEntry { return pl.entries[b] }

// Count returns the number of entries.
func (pl *PortsList) Count() int { return len(pl.entries) }

// BusFromNickName linearly scans for an entry whose NickName matches nick
// (case-sensitive, per seq66's exact-string convention), returning
// NullBuss if none match.
func (pl *PortsList) BusFromNickName(nick string) Buss {
	for b, e := range pl.entries {
		if e.NickName == nick {
			return b
		}
	}
	return NullBuss
}

// MatchUp overlays source's enabled/clock_mode onto this list's entries
// that share the same io name (Name), used to apply actual port statuses
// onto a configured port-map.
func (pl *PortsList) MatchUp(source *PortsList) {
	for _, e := range pl.entries {
		for _, s := range source.entries {
			if s.Name == e.Name {
				e.Enabled = s.Enabled
				e.Clock = s.Clock
				break
			}
		}
	}
}

// NicknameForOut/NicknameForIn recover a nickname from a driver-reported
// port identity, the way the teacher's midiconnector stores `drivers.Out`
// values keyed by their display name — without opening the port, per
// spec.md §1's MIDI I/O driver non-goal.
func NicknameForOut(out drivers.Out) string {
	return ExtractNickname(fmt.Sprintf("%v", out))
}

func NicknameForIn(in drivers.In) string {
	return ExtractNickname(fmt.Sprintf("%v", in))
}

// ExtractNickname applies the ALSA/JACK display-name heuristics seq66
// uses to recover a short "Client:Port" form from a system-reported full
// port name, falling back to the original string if no shape matches.
func ExtractNickname(fullName string) string {
	// "[n] c:p Client:Port" — bracketed index, then "c:p", then the name.
	if strings.HasPrefix(fullName, "[") {
		if end := strings.Index(fullName, "]"); end >= 0 {
			rest := strings.TrimSpace(fullName[end+1:])
			fields := strings.Fields(rest)
			if len(fields) >= 2 && strings.Contains(fields[0], ":") {
				return strings.Join(fields[1:], " ")
			}
			if rest != "" {
				return rest
			}
		}
	}

	// "a2j:Midi Through [k] (...): Client:Port" — keep the part after the
	// last colon-space-delimited segment if it looks like "Client:Port".
	if strings.HasPrefix(fullName, "a2j:") {
		if idx := strings.LastIndex(fullName, "): "); idx >= 0 {
			candidate := strings.TrimSpace(fullName[idx+3:])
			if candidate != "" {
				return candidate
			}
		}
	}

	// Short-name detection: already "Client:Port" with no extra decoration.
	if strings.Count(fullName, ":") == 1 && !strings.ContainsAny(fullName, "[]()") {
		return fullName
	}

	return fullName
}

// snapshot is the jsoniter-serializable form of the table.
type snapshot struct {
	IsMap   bool                 `json:"is_map"`
	Entries map[Buss]*PortEntry `json:"entries"`
}

// Snapshot serializes the list to JSON bytes.
func (pl *PortsList) Snapshot() ([]byte, error) {
	return json.Marshal(snapshot{IsMap: pl.isMap, Entries: pl.entries})
}

// Load is the inverse of Snapshot.
func Load(data []byte) (*PortsList, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	pl := New(s.IsMap)
	for k, v := range s.Entries {
		pl.entries[k] = v
	}
	return pl, nil
}
