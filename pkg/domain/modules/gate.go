// Package modules decides which workspace modules a project may open in its
// current lifecycle state.
package modules

import (
	"fmt"

	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

// ID identifies a workspace module (a screen or feature area).
type ID string

// String returns the string representation of the module id.
func (id ID) String() string {
	return string(id)
}

// Module is a phase-gated feature area.
type Module struct {
	ID      ID              `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Phase   lifecycle.Phase `json:"phase,omitempty" yaml:"phase,omitempty"`
	Utility bool            `json:"utility,omitempty" yaml:"utility,omitempty"`
}

// Utility modules.
const (
	Activity ID = "activity"
	Settings ID = "settings"
	Search   ID = "search"
)

// Modules referenced by recommended actions.
const (
	Brief      ID = "brief"
	Approvals  ID = "approvals"
	Greenlight ID = "greenlight"
	Team       ID = "stakeholders"
	CallSheets ID = "call-sheets"
)

func phased(p lifecycle.Phase, entries ...Module) []Module {
	for i := range entries {
		entries[i].Phase = p
	}
	return entries
}

var catalogue = func() []Module {
	var out []Module
	out = append(out, phased(lifecycle.PhaseDevelopment,
		Module{ID: Brief, Name: "Brief"},
		Module{ID: "treatment", Name: "Treatment"},
		Module{ID: "script", Name: "Script"},
		Module{ID: "pitch-deck", Name: "Pitch Deck"},
		Module{ID: "moodboard", Name: "Moodboard"},
		Module{ID: "budget", Name: "Budget"},
		Module{ID: "legal", Name: "Legal"},
		Module{ID: "contracts", Name: "Contracts"},
		Module{ID: "rights-clearance", Name: "Rights Clearance"},
		Module{ID: Team, Name: "Stakeholders"},
		Module{ID: Approvals, Name: "Approvals"},
		Module{ID: Greenlight, Name: "Greenlight"},
	)...)
	out = append(out, phased(lifecycle.PhasePreProduction,
		Module{ID: "schedule", Name: "Schedule"},
		Module{ID: CallSheets, Name: "Call Sheets"},
		Module{ID: "casting", Name: "Casting"},
		Module{ID: "crew", Name: "Crew"},
		Module{ID: "locations", Name: "Locations"},
		Module{ID: "scouting", Name: "Scouting"},
		Module{ID: "shot-list", Name: "Shot List"},
		Module{ID: "storyboards", Name: "Storyboards"},
		Module{ID: "equipment", Name: "Equipment"},
		Module{ID: "permits", Name: "Permits"},
		Module{ID: "insurance", Name: "Insurance"},
		Module{ID: "wardrobe", Name: "Wardrobe"},
		Module{ID: "props", Name: "Props"},
	)...)
	out = append(out, phased(lifecycle.PhaseProduction,
		Module{ID: "dailies", Name: "Dailies"},
		Module{ID: "daily-reports", Name: "Daily Reports"},
		Module{ID: "continuity", Name: "Continuity"},
		Module{ID: "timecards", Name: "Timecards"},
		Module{ID: "expenses", Name: "Expenses"},
		Module{ID: "shoot-log", Name: "Shoot Log"},
		Module{ID: "media-ingest", Name: "Media Ingest"},
	)...)
	out = append(out, phased(lifecycle.PhasePostProduction,
		Module{ID: "edit", Name: "Edit"},
		Module{ID: "rough-cut", Name: "Rough Cut"},
		Module{ID: "color", Name: "Color"},
		Module{ID: "sound", Name: "Sound"},
		Module{ID: "vfx", Name: "VFX"},
		Module{ID: "music", Name: "Music"},
		Module{ID: "captions", Name: "Captions"},
		Module{ID: "versions", Name: "Versions"},
		Module{ID: "review-notes", Name: "Review Notes"},
		Module{ID: "screenings", Name: "Screenings"},
	)...)
	out = append(out, phased(lifecycle.PhaseDelivery,
		Module{ID: "deliverables", Name: "Deliverables"},
		Module{ID: "distribution", Name: "Distribution"},
		Module{ID: "marketing", Name: "Marketing"},
		Module{ID: "press-kit", Name: "Press Kit"},
		Module{ID: "festivals", Name: "Festivals"},
		Module{ID: "invoices", Name: "Invoices"},
		Module{ID: "analytics", Name: "Analytics"},
		Module{ID: "wrap-report", Name: "Wrap Report"},
		Module{ID: "archive", Name: "Archive"},
	)...)
	out = append(out,
		Module{ID: Activity, Name: "Activity", Utility: true},
		Module{ID: Settings, Name: "Settings", Utility: true},
		Module{ID: Search, Name: "Search", Utility: true},
	)
	return out
}()

// Gate answers module accessibility queries. It is read-only after
// construction and safe for concurrent use.
type Gate struct {
	modules []Module
	byID    map[ID]Module
}

// NewGate builds a gate over the built-in module catalogue.
func NewGate() *Gate {
	return NewGateFrom(catalogue)
}

// NewGateFrom builds a gate over a custom catalogue. Later entries with a
// duplicate id replace earlier ones.
func NewGateFrom(mods []Module) *Gate {
	g := &Gate{
		modules: make([]Module, 0, len(mods)),
		byID:    make(map[ID]Module, len(mods)),
	}
	for _, m := range mods {
		if _, dup := g.byID[m.ID]; !dup {
			g.modules = append(g.modules, m)
		} else {
			for i := range g.modules {
				if g.modules[i].ID == m.ID {
					g.modules[i] = m
				}
			}
		}
		g.byID[m.ID] = m
	}
	return g
}

// DefaultGate is the gate over the built-in catalogue.
var DefaultGate = NewGate()

// Modules returns every module in catalogue order.
func (g *Gate) Modules() []Module {
	out := make([]Module, len(g.modules))
	copy(out, g.modules)
	return out
}

// Lookup returns the module registered under id.
func (g *Gate) Lookup(id ID) (Module, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// PhaseOfModule returns the phase that owns the module. Utility and unmapped
// modules have no owning phase.
func (g *Gate) PhaseOfModule(id ID) (lifecycle.Phase, bool) {
	m, ok := g.byID[id]
	if !ok || m.Utility {
		return "", false
	}
	return m.Phase, true
}

// CanAccessModule reports whether a project in state s may open the module.
// Utility modules are always open. Unmapped ids are open as well.
func (g *Gate) CanAccessModule(s lifecycle.State, id ID) bool {
	phase, ok := g.PhaseOfModule(id)
	if !ok {
		return true
	}
	return lifecycle.IsPhaseAccessible(s, phase)
}

// RestrictedMessage explains why a module is locked. It returns false when
// the module is accessible.
func (g *Gate) RestrictedMessage(s lifecycle.State, id ID) (string, bool) {
	if g.CanAccessModule(s, id) {
		return "", false
	}

	m := g.byID[id]
	prev, ok := m.Phase.Previous()
	if !ok {
		return fmt.Sprintf("%s unlocks in %s.", m.Name, m.Phase.DisplayName()), true
	}
	return fmt.Sprintf("%s unlocks in %s. Complete %s first.",
		m.Name, m.Phase.DisplayName(), prev.DisplayName()), true
}

// Accessible returns the modules open in state s, in catalogue order.
func (g *Gate) Accessible(s lifecycle.State) []Module {
	var out []Module
	for _, m := range g.modules {
		if g.CanAccessModule(s, m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// CanAccessModule checks id against DefaultGate.
func CanAccessModule(s lifecycle.State, id ID) bool {
	return DefaultGate.CanAccessModule(s, id)
}

// RestrictedMessage checks id against DefaultGate.
func RestrictedMessage(s lifecycle.State, id ID) (string, bool) {
	return DefaultGate.RestrictedMessage(s, id)
}
