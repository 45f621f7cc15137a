package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/futureCreator/qcflow/internal/assets"
	"github.com/futureCreator/qcflow/internal/executor"
	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Workflow is one entry of a pipeline document.
type Workflow struct {
	Command []types.Step `yaml:"command"`
}

// Document maps workflow names to their command lists.
type Document map[string]Workflow

// TemplateName is the embedded default pipeline document.
const TemplateName = "pipelines.yaml"

// Parse decodes a pipeline document from YAML bytes.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "parsing pipeline document: %v", err)
	}
	if len(doc) == 0 {
		return nil, errors.Wrap(types.ErrConfiguration, "pipeline document defines no workflows")
	}
	return doc, nil
}

// ParseFile reads and parses a pipeline document.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "reading pipeline file %s: %v", path, err)
	}
	return Parse(data)
}

// LoadOrCreate parses the document at path. A missing file is first
// created from the pipelines template so the run stays reproducible and
// editable.
func LoadOrCreate(path string) (doc Document, created bool, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, false, errors.Wrapf(types.ErrConfiguration, "creating %s: %v", dir, err)
			}
		}
		tmpl, err := assets.LoadTemplate(TemplateName)
		if err != nil {
			return nil, false, errors.Wrapf(types.ErrConfiguration, "loading default pipeline document: %v", err)
		}
		if err := os.WriteFile(path, []byte(tmpl), 0644); err != nil {
			return nil, false, errors.Wrapf(types.ErrConfiguration, "writing default pipeline file %s: %v", path, err)
		}
		vlog.Info("created default pipeline document", "path", path)
		created = true
	}
	doc, err = ParseFile(path)
	return doc, created, err
}

// Names lists the workflows in the document.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Workflow validates and returns the steps of the named workflow.
func (d Document) Workflow(name string) ([]types.Step, error) {
	wf, ok := d[name]
	if !ok {
		return nil, errors.Wrapf(types.ErrConfiguration, "workflow %q not found (have %v)", name, d.Names())
	}
	if err := Validate(name, wf.Command); err != nil {
		return nil, err
	}
	return wf.Command, nil
}

// Validate checks a command list: non-empty, every step runnable, at
// most one placeholder per template.
func Validate(name string, steps []types.Step) error {
	if len(steps) == 0 {
		return errors.Wrapf(types.ErrConfiguration, "workflow %q: command must be a non-empty list", name)
	}
	for i, s := range steps {
		switch s.Executor {
		case "", ShellExecutor:
		default:
			return errors.Wrapf(types.ErrConfiguration, "workflow %q: command %d: unknown executor %q", name, i+1, s.Executor)
		}
		if s.Run == "" {
			return errors.Wrapf(types.ErrConfiguration, "workflow %q: command %d is empty", name, i+1)
		}
		switch n := executor.Placeholders(s.Run); {
		case n > 1:
			return errors.Wrapf(types.ErrConfiguration, "workflow %q: command %d has %d placeholders, at most one allowed: %s", name, i+1, n, s.Run)
		case n == 0:
			vlog.Warn("command does not contain placeholder '{}'", "workflow", name, "command", i+1, "run", s.Run)
		}
	}
	return nil
}
