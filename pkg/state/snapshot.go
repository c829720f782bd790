// Package state reads the current AD binding configuration from
// dsconfigad and normalizes it into an immutable Snapshot.
package state

import (
	"maps"
	"slices"
	"sort"

	"github.com/ormasoftchile/adbind/pkg/property"
)

// Presence is whether the host is bound to a domain.
type Presence string

const (
	Bound    Presence = "bound"
	NotBound Presence = "not-bound"
)

// Snapshot is one complete read of the binding configuration. It is never
// modified after construction; a new read replaces it.
type Snapshot struct {
	// Name is the AD domain (the fqdn property), exposed under the binding's
	// primary identifier.
	Name       string
	Presence   Presence
	properties map[property.Key]property.Value
}

// NewSnapshot builds a snapshot from canonical properties. fqdn is moved
// to Name and Presence is derived from the computer account.
func NewSnapshot(props map[property.Key]property.Value) *Snapshot {
	s := &Snapshot{properties: make(map[property.Key]property.Value, len(props))}
	for k, v := range props {
		s.properties[k] = v
	}
	if fqdn, ok := s.properties[property.FQDN]; ok {
		s.Name = fqdn.String()
		delete(s.properties, property.FQDN)
	}
	s.Presence = NotBound
	if c, ok := s.properties[property.Computer]; ok && !c.IsEmpty() {
		s.Presence = Bound
	}
	return s
}

// Empty returns the not-bound snapshot with no properties.
func Empty() *Snapshot {
	return NewSnapshot(nil)
}

// IsBound reports whether Presence is Bound.
func (s *Snapshot) IsBound() bool {
	return s != nil && s.Presence == Bound
}

// Get returns the current value of key.
func (s *Snapshot) Get(key property.Key) (property.Value, bool) {
	if key == property.FQDN {
		return property.Scalar(s.Name), s.Name != ""
	}
	v, ok := s.properties[key]
	return v, ok
}

// Keys returns the keys present in the snapshot in table order.
func (s *Snapshot) Keys() []property.Key {
	keys := slices.Collect(maps.Keys(s.properties))
	sort.Slice(keys, func(i, j int) bool {
		return property.Order(keys[i]) < property.Order(keys[j])
	})
	return keys
}

// Properties returns a copy of the property map.
func (s *Snapshot) Properties() map[property.Key]property.Value {
	return maps.Clone(s.properties)
}

// Facts flattens the snapshot for expression environments: every property
// as its native value plus name, bound and presence.
func (s *Snapshot) Facts() map[string]any {
	facts := make(map[string]any, len(s.properties)+3)
	for k, v := range s.properties {
		facts[string(k)] = v.Native()
	}
	facts["name"] = s.Name
	facts["bound"] = s.IsBound()
	facts["presence"] = string(s.Presence)
	return facts
}

// View is the serializable form of a Snapshot.
type View struct {
	Name       string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Presence   Presence                  `json:"presence" yaml:"presence"`
	Properties map[string]property.Value `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// View returns the serializable form of s.
func (s *Snapshot) View() View {
	v := View{Name: s.Name, Presence: s.Presence}
	if len(s.properties) > 0 {
		v.Properties = make(map[string]property.Value, len(s.properties))
		for k, val := range s.properties {
			v.Properties[string(k)] = val
		}
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
