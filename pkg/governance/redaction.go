package governance

import (
	"regexp"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/schema"
)

// Mask replaces every redacted value.
const Mask = "********"

// secretFlags take a secret as their next argument.
var secretFlags = map[string]bool{
	"-password":      true,
	"-localpassword": true,
}

// CompiledRedaction is a pre-compiled redaction rule.
type CompiledRedaction struct {
	Pattern *regexp.Regexp
	Replace string
}

// CompileRedactionRules compiles redaction rules from the governance policy.
func CompileRedactionRules(rules []schema.RedactionRule) ([]*CompiledRedaction, error) {
	var compiled []*CompiledRedaction
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, &CompiledRedaction{
			Pattern: re,
			Replace: r.Replace,
		})
	}
	return compiled, nil
}

// RedactOutput applies all compiled redaction rules to the given output.
func RedactOutput(output string, rules []*CompiledRedaction) string {
	result := output
	for _, r := range rules {
		result = r.Pattern.ReplaceAllString(result, r.Replace)
	}
	return result
}

// IsSecretFlag reports whether flag takes a secret as its value.
func IsSecretFlag(flag string) bool {
	return secretFlags[flag]
}

// RedactArgs returns a copy of args with the value following each secret
// flag masked.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if secretFlags[out[i]] {
			out[i+1] = Mask
			i++
		}
	}
	return out
}

// Redactor masks secrets in argument vectors and free text.
type Redactor struct {
	rules []*CompiledRedaction
}

// NewRedactor compiles extra rules on top of the built-in secret-flag masking.
func NewRedactor(rules []schema.RedactionRule) (*Redactor, error) {
	compiled, err := CompileRedactionRules(rules)
	if err != nil {
		return nil, err
	}
	return &Redactor{rules: compiled}, nil
}

// Args renders args for display with secrets masked.
func (r *Redactor) Args(args []string) string {
	return r.Text(strings.Join(RedactArgs(args), " "))
}

// Argv returns a copy of args with secret flag values masked and the extra
// rules applied to each argument. A nil Redactor only masks secret flags.
func (r *Redactor) Argv(args []string) []string {
	out := RedactArgs(args)
	if r == nil {
		return out
	}
	for i, a := range out {
		out[i] = RedactOutput(a, r.rules)
	}
	return out
}

// Text applies the extra rules to s. A nil Redactor returns s unchanged.
func (r *Redactor) Text(s string) string {
	if r == nil {
		return s
	}
	return RedactOutput(s, r.rules)
}
