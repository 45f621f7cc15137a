// Package assets provides the embedded settings and pipeline templates.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Dir is the settings directory searched for template overrides.
const Dir = ".qcflow"

// LoadTemplate returns the content of a template by file name.
// Override lookup order: project .qcflow/templates/ > user ~/.qcflow/templates/ > embedded.
func LoadTemplate(name string) (string, error) {
	return loadWithOverride("templates", name, templatesFS)
}

// Templates lists the embedded template names.
func Templates() ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func loadWithOverride(dir, filename string, embedded embed.FS) (string, error) {
	// 1. project-level override
	projectPath := filepath.Join(Dir, dir, filename)
	if data, err := os.ReadFile(projectPath); err == nil {
		return string(data), nil
	}

	// 2. user-level override
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, Dir, dir, filename)
		if data, err := os.ReadFile(userPath); err == nil {
			return string(data), nil
		}
	}

	// 3. embedded default; embed paths always use forward slashes
	data, err := embedded.ReadFile(path.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("%s %q not found", dir, filename)
	}
	return string(data), nil
}
