// Package requests loads named request plans (YAML/JSON) that the runner
// submits through the shared HTTP session.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gonet/dgnet/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Plan is a single request declared in the requests file.
type Plan struct {
	ID      string            `json:"id" yaml:"id"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    any               `json:"body" yaml:"body"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	// Fields lists result members logged after a successful response.
	Fields []string `json:"fields" yaml:"fields"`
}

type planFile struct {
	Requests []Plan `json:"requests" yaml:"requests"`
}

// Registry holds the validated plans in file order.
type Registry struct {
	mu    sync.RWMutex
	plans []Plan
	idx   map[string]Plan
}

// LoadRegistry loads request plans from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	parsed, err := parsePlanFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}
	return NewRegistry(parsed.Requests)
}

// NewRegistry validates plans and indexes them by id.
func NewRegistry(plans []Plan) (*Registry, error) {
	reg := &Registry{
		plans: make([]Plan, 0, len(plans)),
		idx:   make(map[string]Plan, len(plans)),
	}
	for i := range plans {
		p := sanitizePlan(plans[i])
		if err := validatePlan(p); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", p.ID)
		}
		reg.plans = append(reg.plans, p)
		reg.idx[p.ID] = p
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parsePlanFile(data []byte, ext string) (planFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var pf planFile
		err := d.fn(data, &pf)
		if err == nil {
			return pf, nil
		}
		lastErr = fmt.Errorf("decode %s: %w", d.name, err)
	}

	if lastErr != nil {
		return planFile{}, fmt.Errorf("requests file format not recognized: %w", lastErr)
	}
	return planFile{}, fmt.Errorf("requests file extension %q not supported (expected YAML or JSON)", ext)
}

func sanitizePlan(p Plan) Plan {
	p.ID = strings.TrimSpace(p.ID)
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	if p.Method == "" {
		p.Method = string(httpclient.MethodGet)
	}
	if p.Enabled == nil {
		def := true
		p.Enabled = &def
	}
	if len(p.Headers) > 0 {
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			if key := strings.TrimSpace(k); key != "" {
				headers[key] = strings.TrimSpace(v)
			}
		}
		p.Headers = headers
	}
	return p
}

// validatePlan checks required fields. The URL itself is validated when the
// request is built so an invalid URL surfaces as a build error at run time.
func validatePlan(p Plan) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	method, err := httpclient.ParseMethod(p.Method)
	if err != nil {
		return fmt.Errorf("request %q: %w", p.ID, err)
	}
	if p.URL == "" {
		return fmt.Errorf("url is required for request %q", p.ID)
	}
	if method == httpclient.MethodGet && p.Body != nil {
		return fmt.Errorf("request %q: body is only allowed for POST", p.ID)
	}
	return nil
}

// HTTPMethod returns the parsed verb; plans are validated on load.
func (p Plan) HTTPMethod() httpclient.Method {
	m, _ := httpclient.ParseMethod(p.Method)
	return m
}

// EnabledValue returns enabled flag defaulting to true.
func (p Plan) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// ByID returns the plan with the given id.
func (r *Registry) ByID(id string) (Plan, bool) {
	if r == nil {
		return Plan{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[strings.TrimSpace(id)]
	return p, ok
}

// All returns every plan in file order.
func (r *Registry) All() []Plan {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plan, len(r.plans))
	copy(out, r.plans)
	return out
}

// Enabled returns plans that are enabled.
func (r *Registry) Enabled() []Plan {
	var out []Plan
	for _, p := range r.All() {
		if p.EnabledValue() {
			out = append(out, p)
		}
	}
	return out
}
