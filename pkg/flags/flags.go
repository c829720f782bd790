// Package flags renders binding properties into dsconfigad argument
// fragments.
//
// A Fragment is either a value flag (-shell "/bin/zsh"), a negation flag
// (-nopreferred), a bare switch (-force) or a verb with an operand
// (-add example.com). Values always travel as a single argv token; the
// quotes only appear in the human rendering returned by String.
package flags

import (
	"sort"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/property"
)

const (
	flagMarker     = "-"
	negationMarker = "-no"
)

// Kind distinguishes the shapes a Fragment can take.
type Kind int

const (
	KindValue Kind = iota
	KindNegation
	KindSwitch
	KindOperand
)

// Fragment is one flag with its optional value.
type Fragment struct {
	Kind  Kind
	Flag  string // including the leading marker
	Value string

	key property.Key
}

// Value returns a value fragment: -flag "value".
func Value(flag, value string) Fragment {
	return Fragment{Kind: KindValue, Flag: flagMarker + flag, Value: value}
}

// Negation returns a no-value fragment: -noflag.
func Negation(flag string) Fragment {
	return Fragment{Kind: KindNegation, Flag: negationMarker + flag}
}

// Switch returns a bare switch: -flag.
func Switch(flag string) Fragment {
	return Fragment{Kind: KindSwitch, Flag: flagMarker + flag}
}

// Operand returns a verb and its operand, rendered unquoted: -flag value.
func Operand(flag, value string) Fragment {
	return Fragment{Kind: KindOperand, Flag: flagMarker + flag, Value: value}
}

// Key returns the property the fragment was built from, if any.
func (f Fragment) Key() property.Key { return f.key }

// Args returns the argv tokens for f.
func (f Fragment) Args() []string {
	switch f.Kind {
	case KindValue, KindOperand:
		return []string{f.Flag, f.Value}
	default:
		return []string{f.Flag}
	}
}

func (f Fragment) String() string {
	switch f.Kind {
	case KindValue:
		return f.Flag + ` "` + f.Value + `"`
	case KindOperand:
		return f.Flag + " " + f.Value
	default:
		return f.Flag
	}
}

// Build renders one property. With allowNegation set and an empty value it
// yields -no<flag>; otherwise -<flag> paired with the value, lists joined
// by commas.
func Build(d property.Descriptor, v property.Value, allowNegation bool) Fragment {
	var f Fragment
	if allowNegation && v.IsEmpty() {
		f = Negation(d.Flag)
	} else {
		f = Value(d.Flag, v.String())
	}
	f.key = d.Key
	return f
}

// Args flattens fragments into an argument vector.
func Args(frags []Fragment) []string {
	var args []string
	for _, f := range frags {
		args = append(args, f.Args()...)
	}
	return args
}

// Render joins the human renderings of frags with spaces.
func Render(frags []Fragment) string {
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Builder accumulates property fragments for one configuration
// invocation. Its zero value is ready to use; it is not safe for
// concurrent use and lives for a single reconciliation pass.
type Builder struct {
	frags []Fragment
}

// Add renders d with value v, honoring d.NoFlag. A later Add for the same
// property replaces the earlier fragment.
func (b *Builder) Add(d property.Descriptor, v property.Value) {
	f := Build(d, v, d.NoFlag)
	for i := range b.frags {
		if b.frags[i].key == d.Key {
			b.frags[i] = f
			return
		}
	}
	b.frags = append(b.frags, f)
}

// Set looks key up and adds it. Unknown keys are a caller error.
func (b *Builder) Set(key property.Key, v property.Value) error {
	d, err := property.Lookup(key)
	if err != nil {
		return err
	}
	b.Add(d, v)
	return nil
}

// Len returns the number of accumulated fragments.
func (b *Builder) Len() int { return len(b.frags) }

// Fragments returns the accumulated fragments in property table order,
// independent of the order they were added in.
func (b *Builder) Fragments() []Fragment {
	out := make([]Fragment, len(b.frags))
	copy(out, b.frags)
	sort.SliceStable(out, func(i, j int) bool {
		return property.Order(out[i].key) < property.Order(out[j].key)
	})
	return out
}

// Reset drops all accumulated fragments.
func (b *Builder) Reset() { b.frags = nil }
