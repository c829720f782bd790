package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/ormasoftchile/adbind/pkg/property"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "binding.properties.groups")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// HasErrors reports whether errs contains anything above warning severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}

// ValidateFile performs the full 3-phase validation pipeline on a manifest file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Manifest, []*ValidationError) {
	m, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return m, Validate(m)
}

// Validate runs the semantic and domain phases on an already decoded manifest.
func Validate(m *Manifest) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, validateSemantic(m)...)
	errs = append(errs, ValidateDomain(m)...)
	return errs
}

// validateSemantic validates the manifest against the JSON Schema.
func validateSemantic(m *Manifest) []*ValidationError {
	semErr := func(format string, args ...any) []*ValidationError {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		}}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return semErr("marshal for schema validation: %v", err)
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semErr("generate schema: %v", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semErr("unmarshal schema: %v", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("manifest-v1.json", schemaDoc); err != nil {
		return semErr("add schema resource: %v", err)
	}
	sch, err := c.Compile("manifest-v1.json")
	if err != nil {
		return semErr("compile schema: %v", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return semErr("unmarshal document: %v", err)
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "."),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = semErr("%v", err)
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of errors; empty means valid.
func ValidateDomain(m *Manifest) []*ValidationError {
	var errs []*ValidationError
	add := func(path, severity, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	if m.APIVersion != APIVersion {
		add("apiVersion", "error", "unrecognized apiVersion %q, expected %q", m.APIVersion, APIVersion)
	}

	b := &m.Binding
	if strings.TrimSpace(b.Name) == "" {
		add("binding.name", "error", "domain name is required")
	}
	switch b.Ensure {
	case "", EnsurePresent, EnsureAbsent:
	default:
		add("binding.ensure", "error", "invalid ensure %q: must be present or absent", b.Ensure)
	}
	if b.Password != "" && b.PasswordEnv != "" {
		add("binding.password", "error", "password and passwordEnv are mutually exclusive")
	}
	if b.Username != "" && b.UsernameEnv != "" {
		add("binding.username", "error", "username and usernameEnv are mutually exclusive")
	}
	if b.Password != "" {
		add("binding.password", "warning", "password is stored in the manifest; prefer passwordEnv")
	}
	if b.EnsureOrDefault() == EnsureAbsent && b.Leave && b.Force {
		add("binding.force", "warning", "force has no effect when leave is set")
	}

	if b.When != "" {
		if _, err := expr.Compile(b.When, expr.AsBool()); err != nil {
			add("binding.when", "error", "invalid condition: %v", err)
		}
	}

	for _, name := range sortedKeys(b.Properties) {
		path := "binding.properties." + name
		d, err := property.Lookup(property.Key(name))
		if err != nil {
			add(path, "error", "%v", err)
			continue
		}
		if !d.Configurable {
			add(path, "error", "%s cannot be configured as a property; set binding.%s instead", name, bindingField(d.Key))
			continue
		}
		v, err := property.Parse(d, b.Properties[name])
		if err != nil {
			add(path, "error", "%v", err)
			continue
		}
		if v.IsEmpty() && !d.NoFlag && d.Kind != property.KindList {
			add(path, "error", "%s cannot be cleared; dsconfigad has no -no%s flag", name, d.Flag)
		}
		if v.IsList() {
			for i, item := range v.Items() {
				if strings.Contains(item, ",") {
					add(fmt.Sprintf("%s[%d]", path, i), "warning", "%q contains a comma and will be split by dsconfigad", item)
				}
			}
		}
	}

	if m.Governance != nil {
		for i, r := range m.Governance.Redact {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				add(fmt.Sprintf("governance.redact[%d].pattern", i), "error", "invalid regex: %v", err)
			}
		}
	}

	return errs
}

func bindingField(key property.Key) string {
	if key == property.FQDN {
		return "name"
	}
	return string(key)
}

func sortedKeys(p Properties) []string {
	return slices.Sorted(maps.Keys(p))
}
