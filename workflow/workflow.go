// Package workflow loads declarative workflow definitions from YAML files.
// A workflow binds an intent to an ordered list of tool steps; agents resolve
// the workflow matching a task's intent and execute its steps through their
// registered tools.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts Go duration strings ("5s", "1m30s") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Step is a single unit of work inside a workflow. Tool names the registered
// tool the owning agent executes it with; Params are passed verbatim, merged
// over the task's entities.
type Step struct {
	Name    string         `yaml:"name"`
	Tool    string         `yaml:"tool"`
	Params  map[string]any `yaml:"params"`
	Timeout Duration       `yaml:"timeout"`
}

// Workflow is a complete named definition covering one or more intents.
type Workflow struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version"`
	Intents     []string       `yaml:"intents"`
	Steps       []Step         `yaml:"steps"`
	Metadata    map[string]any `yaml:"metadata"`
}

// Validate checks structural requirements: a name, at least one intent and at
// least one step, each step naming a tool.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow missing name")
	}
	if len(w.Intents) == 0 {
		return fmt.Errorf("workflow %q declares no intents", w.Name)
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow %q declares no steps", w.Name)
	}
	for i, s := range w.Steps {
		if s.Tool == "" {
			return fmt.Errorf("workflow %q step %d missing tool", w.Name, i)
		}
	}
	return nil
}

// Parse decodes a single workflow definition from YAML bytes and validates it.
func Parse(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Registry indexes workflows by intent. Safe for concurrent use; lookups far
// outnumber registrations.
type Registry struct {
	mu       sync.RWMutex
	byIntent map[string]*Workflow
	byName   map[string]*Workflow
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byIntent: make(map[string]*Workflow),
		byName:   make(map[string]*Workflow),
	}
}

// Register validates w and indexes it under its name and every declared
// intent. An intent already claimed by another workflow is overwritten, last
// registration wins.
func (r *Registry) Register(w *Workflow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[w.Name] = w
	for _, intent := range w.Intents {
		r.byIntent[intent] = w
	}
	return nil
}

// Lookup resolves the workflow registered for intent, if any.
func (r *Registry) Lookup(intent string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byIntent[intent]
	return w, ok
}

// Get resolves a workflow by name, if any.
func (r *Registry) Get(name string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byName[name]
	return w, ok
}

// Names lists the registered workflow names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// LoadDir loads every .yaml/.yml file in dir into a new registry. A file that
// fails to parse aborts the load; partially loaded registries are not
// returned.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workflow dir: %w", err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read workflow file %s: %w", entry.Name(), err)
		}
		w, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("workflow file %s: %w", entry.Name(), err)
		}
		if err := reg.Register(w); err != nil {
			return nil, fmt.Errorf("workflow file %s: %w", entry.Name(), err)
		}
	}
	return reg, nil
}
