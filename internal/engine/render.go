package engine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// Renderer renders templated task parameters against execution variables.
// Templates use Go text/template syntax with the variable map as dot-context.
type Renderer struct {
	funcs template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

var (
	defaultRenderer     *Renderer
	defaultRendererOnce sync.Once
)

// DefaultRenderer returns the process-wide renderer with the standard
// function map. Tasks share it so compiled templates are cached across runs.
func DefaultRenderer() *Renderer {
	defaultRendererOnce.Do(func() {
		defaultRenderer = NewRenderer()
	})
	return defaultRenderer
}

// NewRenderer creates a renderer with the standard function map.
func NewRenderer() *Renderer {
	r := &Renderer{cache: make(map[string]*template.Template)}
	r.funcs = template.FuncMap{
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"replace": strings.ReplaceAll,
		"split":   strings.Split,
		"join":    strings.Join,
		"default": func(def, val any) any {
			if val == nil || val == "" {
				return def
			}
			return val
		},
		"now": func() string {
			return time.Now().UTC().Format(time.RFC3339)
		},
		"formatTime": func(layout string, t time.Time) string {
			return t.Format(layout)
		},
		"uuid": uuid.NewString,
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		"b64enc": func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		},
		"b64dec": func(s string) (string, error) {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
	return r
}

// RenderString renders a single template string. Strings without template
// actions are returned unchanged without compiling.
func (r *Renderer) RenderString(tmpl string, vars map[string]any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := r.compile(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// RenderInput renders every string value of an input map, recursing into
// nested maps and slices. Non-string values pass through untouched.
func (r *Renderer) RenderInput(in Input, vars map[string]any) (Input, error) {
	if in == nil {
		return Input{}, nil
	}
	out := make(Input, len(in))
	for k, v := range in {
		rendered, err := r.renderValue(v, vars)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		out[k] = rendered
	}
	return out, nil
}

func (r *Renderer) renderValue(v any, vars map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return r.RenderString(val, vars)
	case map[string]any:
		nested := make(map[string]any, len(val))
		for k, item := range val {
			rendered, err := r.renderValue(item, vars)
			if err != nil {
				return nil, err
			}
			nested[k] = rendered
		}
		return nested, nil
	case []any:
		rendered := make([]any, len(val))
		for i, item := range val {
			ri, err := r.renderValue(item, vars)
			if err != nil {
				return nil, err
			}
			rendered[i] = ri
		}
		return rendered, nil
	case []string:
		rendered := make([]string, len(val))
		for i, item := range val {
			s, err := r.RenderString(item, vars)
			if err != nil {
				return nil, err
			}
			rendered[i] = s
		}
		return rendered, nil
	default:
		return v, nil
	}
}

func (r *Renderer) compile(tmpl string) (*template.Template, error) {
	r.mu.RLock()
	if t, ok := r.cache[tmpl]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	t, err := template.New("param").Funcs(r.funcs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("template compilation failed: %w", err)
	}

	r.mu.Lock()
	r.cache[tmpl] = t
	r.mu.Unlock()
	return t, nil
}
