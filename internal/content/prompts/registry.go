package prompts

import (
	"fmt"
	"strings"
	"sync"
)

type Template struct {
	Name        PromptName
	Version     int
	SchemaName  string
	Schema      func() map[string]any
	Temperature float64
	System      func(Input) string
	User        func(Input) string
	Validate    Validator
}

// Prompt is a rendered template ready for an llm.Request.
type Prompt struct {
	Name        string
	Version     int
	SchemaName  string
	Schema      map[string]any
	Temperature float64
	System      string
	User        string
}

var (
	mu       sync.RWMutex
	registry = map[PromptName]Template{}
	loadOnce sync.Once
)

func Register(t Template) {
	mu.Lock()
	defer mu.Unlock()
	registry[t.Name] = t
}

func lookup(name PromptName) (Template, bool) {
	loadOnce.Do(RegisterAll)
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := lookup(name)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	return Prompt{
		Name:        string(t.Name),
		Version:     t.Version,
		SchemaName:  strings.TrimSpace(t.SchemaName),
		Schema:      t.Schema(),
		Temperature: t.Temperature,
		System:      strings.TrimSpace(t.System(in)),
		User:        strings.TrimSpace(t.User(in)),
	}, nil
}
