// Package types holds shared data structures used across packages.
package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Step is a single command in a pipeline.
// In a pipeline document a step is written either as a bare template string
// or as a mapping with the fields below.
type Step struct {
	Name     string   `yaml:"name,omitempty"`
	Executor string   `yaml:"executor,omitempty"`
	Run      string   `yaml:"run"`
	Output   string   `yaml:"output,omitempty"`
	Expect   []string `yaml:"expect,omitempty"`
	Marker   string   `yaml:"marker,omitempty"`
	Strict   bool     `yaml:"strict,omitempty"`
}

// stepFields avoids recursing into UnmarshalYAML.
type stepFields Step

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var run string
		if err := node.Decode(&run); err != nil {
			return err
		}
		*s = Step{Run: run}
		return nil
	case yaml.MappingNode:
		var f stepFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		*s = Step(f)
		return nil
	default:
		return fmt.Errorf("line %d: step must be a string or a mapping", node.Line)
	}
}

// MarshalYAML writes plain command steps back as bare strings.
func (s Step) MarshalYAML() (interface{}, error) {
	if s.Name == "" && s.Executor == "" && s.Output == "" && len(s.Expect) == 0 && s.Marker == "" && !s.Strict {
		return s.Run, nil
	}
	return stepFields(s), nil
}

// Label is the name shown in logs and reports.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Executor != "" && s.Executor != "shell" {
		return s.Executor
	}
	if s.Run == "" {
		return "step"
	}
	// first word of the command line
	for i, r := range s.Run {
		if r == ' ' || r == '\t' {
			return s.Run[:i]
		}
	}
	return s.Run
}
