// Package mutegroup implements MuteGroup/MuteGroups, spec.md §4.7: 32
// screen-sized bitmask groups, with apply/unapply/toggle/learn, a grid
// mapping that respects a session-wide orientation, and a jsoniter-backed
// snapshot for the object model a config loader would populate.
package mutegroup

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GroupNumber identifies a mute group; NullMuteGroup means none selected.
type GroupNumber int

const (
	NullMuteGroup GroupNumber = -1
	Capacity      int         = 32
	DefaultRows   int         = 4
	DefaultCols   int         = 8
)

// GridOrientation replaces the source's global swap_coordinates flag
// (spec.md §9): threaded explicitly through the constructor instead.
type GridOrientation int

const (
	RowMajor GridOrientation = iota
	ColumnMajor
)

// LoadSavePolicy enumerates how a mute group direction is persisted.
type LoadSavePolicy int

const (
	PolicyNone LoadSavePolicy = iota
	PolicyMutes
	PolicyMidi
	PolicyBoth
)

func (p LoadSavePolicy) String() string {
	switch p {
	case PolicyMutes:
		return "mutes"
	case PolicyMidi:
		return "midi"
	case PolicyBoth:
		return "both"
	default:
		return "none"
	}
}

// ParseLoadSavePolicy is the inverse of String.
func ParseLoadSavePolicy(s string) (LoadSavePolicy, bool) {
	switch s {
	case "none":
		return PolicyNone, true
	case "mutes":
		return PolicyMutes, true
	case "midi":
		return PolicyMidi, true
	case "both":
		return PolicyBoth, true
	default:
		return PolicyNone, false
	}
}

// MuteGroup is a rectangular bitmap of armed/muted slots for one group.
type MuteGroup struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Bits    []bool `json:"bits"`
	Applied bool   `json:"applied"`
}

func newMuteGroup(rows, cols int) *MuteGroup {
	return &MuteGroup{Rows: rows, Cols: cols, Bits: make([]bool, rows*cols)}
}

// IsEmpty reports whether every bit is false.
func (g *MuteGroup) IsEmpty() bool {
	for _, b := range g.Bits {
		if b {
			return false
		}
	}
	return true
}

// MuteGroups is the 32-group table bound to one session.
type MuteGroups struct {
	groups         map[GroupNumber]*MuteGroup
	rows, cols     int
	orientation    GridOrientation
	groupSelected  GroupNumber
	groupLearn     bool
	loadPolicy     LoadSavePolicy
	savePolicy     LoadSavePolicy
	groupFormat    string // "binary" or "hex", carried opaquely per spec.md §6
	activeFromGrp  map[GroupNumber][]bool
}

// New creates a full 32-group table, all empty, sized rows x cols.
func New(rows, cols int, orientation GridOrientation) *MuteGroups {
	mg := &MuteGroups{
		groups:        make(map[GroupNumber]*MuteGroup, Capacity),
		rows:          rows,
		cols:          cols,
		orientation:   orientation,
		groupSelected: NullMuteGroup,
		groupFormat:   "binary",
		activeFromGrp: make(map[GroupNumber][]bool),
	}
	for i := 0; i < Capacity; i++ {
		mg.groups[GroupNumber(i)] = newMuteGroup(rows, cols)
	}
	return mg
}

func (mg *MuteGroups) GroupSelected() GroupNumber { return mg.groupSelected }
func (mg *MuteGroups) GroupLearn() bool           { return mg.groupLearn }
func (mg *MuteGroups) SetGroupLearn(v bool)       { mg.groupLearn = v }
func (mg *MuteGroups) LoadPolicy() LoadSavePolicy { return mg.loadPolicy }
func (mg *MuteGroups) SavePolicy() LoadSavePolicy { return mg.savePolicy }
func (mg *MuteGroups) SetLoadPolicy(p LoadSavePolicy) { mg.loadPolicy = p }
func (mg *MuteGroups) SetSavePolicy(p LoadSavePolicy) { mg.savePolicy = p }
func (mg *MuteGroups) GroupFormat() string        { return mg.groupFormat }
func (mg *MuteGroups) SetGroupFormat(f string)     { mg.groupFormat = f }

// Group returns group g, or nil if out of range.
func (mg *MuteGroups) Group(g GroupNumber) *MuteGroup {
	return mg.groups[g]
}

// Apply copies group g's bits into outBits, arms the group, and records
// it as selected. No-op (returns false) if g is empty or out of range.
func (mg *MuteGroups) Apply(g GroupNumber, outBits []bool) bool {
	group := mg.groups[g]
	if group == nil || group.IsEmpty() {
		return false
	}
	copy(outBits, group.Bits)
	group.Applied = true
	mg.groupSelected = g
	return true
}

// Unapply zeroes outBits and clears applied/selected state for g. If g is
// NullMuteGroup, the currently selected group (if any) is unapplied.
func (mg *MuteGroups) Unapply(g GroupNumber, outBits []bool) {
	for i := range outBits {
		outBits[i] = false
	}
	target := g
	if target == NullMuteGroup {
		target = mg.groupSelected
	}
	if group := mg.groups[target]; group != nil {
		group.Applied = false
	}
	if mg.groupSelected == target {
		mg.groupSelected = NullMuteGroup
	}
}

// Toggle applies g if it was not the active group (unapplying whatever
// was active first), or unapplies it if it was already active.
func (mg *MuteGroups) Toggle(g GroupNumber, outBits []bool) {
	if mg.groupSelected == g {
		mg.Unapply(g, outBits)
		return
	}
	if mg.groupSelected != NullMuteGroup {
		mg.Unapply(mg.groupSelected, outBits)
	}
	mg.Apply(g, outBits)
}

// ToggleActive ORs g's bits into armedBits on the first call, and on the
// matching second call disarms only the bits g contributed, leaving any
// bits the user armed independently untouched (spec.md §4.7).
func (mg *MuteGroups) ToggleActive(g GroupNumber, armedBits []bool) []bool {
	group := mg.groups[g]
	if group == nil {
		return armedBits
	}
	if contributed, active := mg.activeFromGrp[g]; active {
		for i := range armedBits {
			if i < len(contributed) && contributed[i] {
				armedBits[i] = false
			}
		}
		delete(mg.activeFromGrp, g)
		return armedBits
	}
	contributed := make([]bool, len(armedBits))
	for i := range armedBits {
		if i < len(group.Bits) && group.Bits[i] && !armedBits[i] {
			armedBits[i] = true
			contributed[i] = true
		}
	}
	mg.activeFromGrp[g] = contributed
	return armedBits
}

// LearnMutes snapshots armedBits into group g's bits and names it.
func (mg *MuteGroups) LearnMutes(g GroupNumber, armedBits []bool, name string) bool {
	group := mg.groups[g]
	if group == nil {
		return false
	}
	group.Bits = append([]bool(nil), armedBits...)
	group.Name = name
	mg.groupSelected = g
	return true
}

// GridToGroup maps a (row, col) grid cell to its group number, honoring
// the constructor's GridOrientation.
func (mg *MuteGroups) GridToGroup(row, col int) GroupNumber {
	if mg.orientation == ColumnMajor {
		return GroupNumber(col + row*mg.cols)
	}
	return GroupNumber(row + col*mg.rows)
}

// GroupToGrid is the inverse of GridToGroup.
func (mg *MuteGroups) GroupToGrid(g GroupNumber) (row, col int) {
	n := int(g)
	if mg.orientation == ColumnMajor {
		return n / mg.cols, n % mg.cols
	}
	return n % mg.rows, n / mg.rows
}

// snapshot is the jsoniter-serializable form of the whole table.
type snapshot struct {
	Rows          int                   `json:"rows"`
	Cols          int                   `json:"cols"`
	Orientation   GridOrientation       `json:"orientation"`
	GroupSelected GroupNumber           `json:"group_selected"`
	LoadPolicy    LoadSavePolicy        `json:"load_policy"`
	SavePolicy    LoadSavePolicy        `json:"save_policy"`
	GroupFormat   string                `json:"group_format"`
	Groups        map[GroupNumber]*MuteGroup `json:"groups"`
}

// Snapshot serializes the table to JSON bytes.
func (mg *MuteGroups) Snapshot() ([]byte, error) {
	s := snapshot{
		Rows: mg.rows, Cols: mg.cols, Orientation: mg.orientation,
		GroupSelected: mg.groupSelected, LoadPolicy: mg.loadPolicy,
		SavePolicy: mg.savePolicy, GroupFormat: mg.groupFormat, Groups: mg.groups,
	}
	return json.Marshal(s)
}

// Load populates the table from JSON bytes produced by Snapshot.
func Load(data []byte) (*MuteGroups, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	mg := New(s.Rows, s.Cols, s.Orientation)
	mg.groupSelected = s.GroupSelected
	mg.loadPolicy = s.LoadPolicy
	mg.savePolicy = s.SavePolicy
	mg.groupFormat = s.GroupFormat
	for k, v := range s.Groups {
		mg.groups[k] = v
	}
	return mg, nil
}
