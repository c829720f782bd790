package property

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Toggle tokens accepted by dsconfigad.
const (
	Enable  = "enable"
	Disable = "disable"
)

// EncodeToggle converts a boolean into its dsconfigad token.
func EncodeToggle(b bool) string {
	if b {
		return Enable
	}
	return Disable
}

// DecodeToggle converts a toggle-looking token into a bool. Any other
// token is returned unchanged, because toggles share value maps with
// plain strings and enums.
func DecodeToggle(token string) any {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case Enable, "true", "yes":
		return true
	case Disable, "false", "no":
		return false
	}
	return token
}

// Value is a scalar or an ordered list of strings. The zero Value is an
// empty scalar. Values are immutable.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// Scalar returns a single-valued Value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// List returns a list Value holding a copy of items.
func List(items ...string) Value {
	return Value{list: slices.Clone(items), isList: true}
}

// Bool returns the toggle Value for b.
func Bool(b bool) Value {
	return Scalar(EncodeToggle(b))
}

// IsList reports whether v holds a list.
func (v Value) IsList() bool { return v.isList }

// IsEmpty reports whether v is an empty scalar or a list with no items.
func (v Value) IsEmpty() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.scalar == ""
}

// Items returns the list elements, or the scalar as a one-element slice.
func (v Value) Items() []string {
	if v.isList {
		return slices.Clone(v.list)
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// String renders v the way it is passed on the command line: lists are
// comma-joined. Embedded commas are not escaped.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.scalar
}

// Equal compares by kind and content. A list of one element equals the
// scalar holding that element, since dsconfigad reports single-entry lists
// inconsistently.
func (v Value) Equal(o Value) bool {
	return slices.Equal(v.Items(), o.Items())
}

// Native returns v as bool (toggle tokens), []string or string, suitable
// for expression environments.
func (v Value) Native() any {
	if v.isList {
		return slices.Clone(v.list)
	}
	return DecodeToggle(v.scalar)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.scalar)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = Value{}
		return nil
	}
	parsed, ok := FromNative(raw)
	if !ok {
		return fmt.Errorf("property value: unsupported JSON %s", data)
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	if v.isList {
		return v.Items(), nil
	}
	return v.scalar, nil
}

// FromNative converts a decoded plist value into a Value. Booleans become
// toggle tokens, numbers decimal strings, arrays lists. ok is false for
// values that cannot be represented (nil, nested dictionaries).
func FromNative(raw any) (v Value, ok bool) {
	switch x := raw.(type) {
	case bool:
		return Bool(x), true
	case string:
		return Scalar(x), true
	case []string:
		return List(x...), true
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			iv, ok := FromNative(item)
			if !ok || iv.isList {
				return Value{}, false
			}
			items = append(items, iv.scalar)
		}
		return List(items...), true
	}
	if s, ok := formatNumber(raw); ok {
		return Scalar(s), true
	}
	return Value{}, false
}

// Parse converts a desired-state value for the property described by d,
// checking it against d.Kind. nil yields the empty value of the kind.
func Parse(d Descriptor, raw any) (Value, error) {
	if raw == nil {
		if d.Kind == KindList {
			return List(), nil
		}
		return Scalar(""), nil
	}
	switch d.Kind {
	case KindToggle:
		switch x := raw.(type) {
		case bool:
			return Bool(x), nil
		case string:
			if b, ok := DecodeToggle(x).(bool); ok {
				return Bool(b), nil
			}
		}
		return Value{}, fmt.Errorf("%s: expected boolean or enable/disable, got %v", d.Key, raw)

	case KindList:
		switch x := raw.(type) {
		case string:
			if x == "" {
				return List(), nil
			}
			return List(x), nil
		case []string:
			return List(x...), nil
		case []any:
			items := make([]string, 0, len(x))
			for i, item := range x {
				s, ok := item.(string)
				if !ok {
					return Value{}, fmt.Errorf("%s[%d]: expected string, got %T", d.Key, i, item)
				}
				items = append(items, s)
			}
			return List(items...), nil
		}
		return Value{}, fmt.Errorf("%s: expected list of strings, got %T", d.Key, raw)

	case KindInteger:
		if s, ok := formatNumber(raw); ok {
			return Scalar(s), nil
		}
		if s, ok := raw.(string); ok {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil || s == "" {
				return Scalar(s), nil
			}
		}
		return Value{}, fmt.Errorf("%s: expected integer, got %v", d.Key, raw)

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("%s: expected one of %s, got %v", d.Key, strings.Join(d.Enum, ", "), raw)
		}
		if s != "" && !slices.Contains(d.Enum, s) {
			return Value{}, fmt.Errorf("%s: %q is not one of %s", d.Key, s, strings.Join(d.Enum, ", "))
		}
		return Scalar(s), nil

	default:
		switch x := raw.(type) {
		case string:
			return Scalar(x), nil
		case bool:
			return Scalar(strconv.FormatBool(x)), nil
		}
		if s, ok := formatNumber(raw); ok {
			return Scalar(s), nil
		}
		return Value{}, fmt.Errorf("%s: expected string, got %T", d.Key, raw)
	}
}

func formatNumber(raw any) (string, bool) {
	switch n := raw.(type) {
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		if n == math.Trunc(n) {
			return strconv.FormatInt(int64(n), 10), true
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
