package reconcile

import (
	"sort"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// Action is the single mutating operation a pass decides on.
type Action string

const (
	ActionNone      Action = "none"
	ActionSkip      Action = "skip" // guard condition is false
	ActionBind      Action = "bind"
	ActionConfigure Action = "configure"
	ActionUnbind    Action = "unbind"
	ActionConflict  Action = "conflict"
)

// Change is one property whose current value differs from the desired one.
type Change struct {
	Key     property.Key   `json:"key"`
	Current property.Value `json:"current"`
	Desired property.Value `json:"desired"`
}

// Plan is the outcome of comparing a snapshot with the desired state.
type Plan struct {
	Action  Action   `json:"action"`
	Changes []Change `json:"changes,omitempty"`
	// Reason explains ActionConflict and ActionSkip.
	Reason string `json:"reason,omitempty"`
}

// Diff compares snap with d. When the host is not bound, Changes lists
// every declared property: they are applied by the pass following the bind.
func Diff(snap *state.Snapshot, d *Desired) *Plan {
	if !d.WantPresent() {
		if snap.IsBound() {
			return &Plan{Action: ActionUnbind}
		}
		return &Plan{Action: ActionNone}
	}

	// A bound host that reports no domain may belong to any domain.
	if snap.IsBound() && snap.Name == "" {
		return &Plan{
			Action: ActionConflict,
			Reason: "host is bound but reports no domain name; cannot confirm it is " + d.Name,
		}
	}
	if snap.IsBound() && !sameDomain(snap.Name, d.Name) {
		return &Plan{
			Action: ActionConflict,
			Reason: "host is bound to " + snap.Name + ", not " + d.Name,
		}
	}

	changes := propertyChanges(snap, d)
	switch {
	case !snap.IsBound():
		return &Plan{Action: ActionBind, Changes: changes}
	case len(changes) > 0:
		return &Plan{Action: ActionConfigure, Changes: changes}
	}
	return &Plan{Action: ActionNone}
}

func propertyChanges(snap *state.Snapshot, d *Desired) []Change {
	var changes []Change
	for key, want := range d.Properties {
		have, _ := snap.Get(key)
		if have.Equal(want) {
			continue
		}
		changes = append(changes, Change{Key: key, Current: have, Desired: want})
	}
	sort.Slice(changes, func(i, j int) bool {
		return property.Order(changes[i].Key) < property.Order(changes[j].Key)
	})
	return changes
}

// AD domain names are case-insensitive and dsconfigad may report a
// trailing dot.
func sameDomain(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}
