// Package schema defines the Go struct types for the binding manifest YAML
// and provides strict YAML parsing.
package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// APIVersion is the only manifest version understood.
const APIVersion = "adbind/v1"

// Ensure values.
const (
	EnsurePresent = "present"
	EnsureAbsent  = "absent"
)

// Manifest is the top-level desired-state document.
type Manifest struct {
	APIVersion string            `yaml:"apiVersion"           json:"apiVersion"           jsonschema:"required,enum=adbind/v1"`
	Binding    Binding           `yaml:"binding"              json:"binding"              jsonschema:"required"`
	Governance *GovernancePolicy `yaml:"governance,omitempty" json:"governance,omitempty"`
}

// Binding declares the desired AD binding of the host. Name is the AD
// domain and the binding's primary identifier.
type Binding struct {
	Name        string     `yaml:"name"                  json:"name"                  jsonschema:"required,minLength=1"`
	Ensure      string     `yaml:"ensure,omitempty"      json:"ensure,omitempty"      jsonschema:"enum=present,enum=absent"`
	Computer    string     `yaml:"computer,omitempty"    json:"computer,omitempty"`
	Username    string     `yaml:"username,omitempty"    json:"username,omitempty"`
	UsernameEnv string     `yaml:"usernameEnv,omitempty" json:"usernameEnv,omitempty"`
	Password    string     `yaml:"password,omitempty"    json:"password,omitempty"`
	PasswordEnv string     `yaml:"passwordEnv,omitempty" json:"passwordEnv,omitempty"`
	OU          string     `yaml:"ou,omitempty"          json:"ou,omitempty"`
	Force       bool       `yaml:"force,omitempty"       json:"force,omitempty"`
	Leave       bool       `yaml:"leave,omitempty"       json:"leave,omitempty"`
	When        string     `yaml:"when,omitempty"        json:"when,omitempty"`
	Properties  Properties `yaml:"properties,omitempty"  json:"properties,omitempty"`
}

// Properties maps canonical property keys to desired values.
type Properties map[string]any

// GovernancePolicy restricts which tool may be run and what is redacted
// from output.
type GovernancePolicy struct {
	AllowedTools []string        `yaml:"allowedTools,omitempty" json:"allowedTools,omitempty"`
	DeniedTools  []string        `yaml:"deniedTools,omitempty"  json:"deniedTools,omitempty"`
	Redact       []RedactionRule `yaml:"redact,omitempty"       json:"redact,omitempty"`
}

// RedactionRule is a regex pattern-replacement pair for sanitizing output.
type RedactionRule struct {
	Pattern string `yaml:"pattern" json:"pattern" jsonschema:"required"`
	Replace string `yaml:"replace" json:"replace" jsonschema:"required"`
}

// EnsureOrDefault returns Ensure, defaulting to present.
func (b *Binding) EnsureOrDefault() string {
	if b.Ensure == "" {
		return EnsurePresent
	}
	return b.Ensure
}

// LoadFile reads and parses a manifest YAML file with strict unknown-field
// rejection.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a manifest from an io.Reader with strict unknown-field rejection.
func Load(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
