// Package replay implements the ReplayExecutor for deterministic offline
// reconciliation using pre-recorded dsconfigad responses.
package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario represents a replay scenario file containing pre-recorded
// command responses, consumed in order.
type Scenario struct {
	Commands []ScenarioCommand `yaml:"commands"`
}

// ScenarioCommand is a pre-recorded command with its expected output.
// StdoutFile, when set, is read relative to the scenario file and
// replaces Stdout.
type ScenarioCommand struct {
	Argv       []string `yaml:"argv"`
	Stdout     string   `yaml:"stdout"`
	StdoutFile string   `yaml:"stdout_file,omitempty"`
	Stderr     string   `yaml:"stderr"`
	ExitCode   int      `yaml:"exit_code"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	for i := range s.Commands {
		c := &s.Commands[i]
		if c.StdoutFile == "" {
			continue
		}
		out, err := os.ReadFile(filepath.Join(base, c.StdoutFile))
		if err != nil {
			return nil, fmt.Errorf("commands[%d].stdout_file: %w", i, err)
		}
		c.Stdout = string(out)
	}
	return s, nil
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("scenario must have at least one command")
	}
	for i, c := range s.Commands {
		if len(c.Argv) == 0 {
			return nil, fmt.Errorf("commands[%d]: argv is required", i)
		}
	}
	return &s, nil
}
