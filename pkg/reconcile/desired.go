package reconcile

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/schema"
)

// Unset is the sentinel treated like an empty required field.
const Unset = "absent"

// Desired is the caller-declared target state. It is read-only to the
// reconciler.
type Desired struct {
	Name     string
	Ensure   string
	Computer string
	Username string
	Password string
	OU       string
	Force    bool
	Leave    bool
	When     string

	Properties map[property.Key]property.Value
}

// WantPresent reports whether the host should be bound.
func (d *Desired) WantPresent() bool {
	return d.Ensure != schema.EnsureAbsent
}

// FromManifest resolves a manifest binding into a Desired state. Secrets
// named by *Env fields are read through getenv. Property keys the codec
// does not know fail with property.ErrUnknownProperty.
func FromManifest(b *schema.Binding, getenv func(string) string) (*Desired, error) {
	d := &Desired{
		Name:     b.Name,
		Ensure:   b.EnsureOrDefault(),
		Computer: b.Computer,
		Username: b.Username,
		Password: b.Password,
		OU:       b.OU,
		Force:    b.Force,
		Leave:    b.Leave,
		When:     b.When,

		Properties: make(map[property.Key]property.Value, len(b.Properties)),
	}
	if b.UsernameEnv != "" {
		d.Username = getenv(b.UsernameEnv)
	}
	if b.PasswordEnv != "" {
		d.Password = getenv(b.PasswordEnv)
	}

	for name, raw := range b.Properties {
		desc, err := property.Lookup(property.Key(name))
		if err != nil {
			return nil, fmt.Errorf("binding.properties: %w", err)
		}
		if !desc.Configurable {
			return nil, fmt.Errorf("binding.properties: %s is not configurable", name)
		}
		v, err := property.Parse(desc, raw)
		if err != nil {
			return nil, fmt.Errorf("binding.properties: %w", err)
		}
		d.Properties[desc.Key] = v
	}
	return d, nil
}

func isUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == Unset
}
