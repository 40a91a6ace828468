package requests

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gonet/dgnet/pkg/httpclient"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write requests file: %v", err)
	}
	return file
}

func TestLoadRegistryYAML(t *testing.T) {
	file := writeFile(t, "requests.yaml", `
requests:
  - id: create-post
    method: post
    url: https://jsonplaceholder.typicode.com/posts
    headers:
      X-Trace: " 1 "
    body:
      title: foo
      body: bar
      userId: 1
    fields: [id, title, body, userId]
  - id: list-posts
    url: https://jsonplaceholder.typicode.com/posts
    enabled: false
`)

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(reg.All()))
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "create-post" {
		t.Fatalf("enabled = %+v", enabled)
	}

	p, ok := reg.ByID("create-post")
	if !ok {
		t.Fatalf("expected create-post")
	}
	if p.HTTPMethod() != httpclient.MethodPost {
		t.Fatalf("method = %q", p.Method)
	}
	if p.Headers["X-Trace"] != "1" {
		t.Fatalf("headers = %v", p.Headers)
	}
	body, ok := p.Body.(map[string]any)
	if !ok || body["title"] != "foo" || body["userId"] != 1 {
		t.Fatalf("body = %#v", p.Body)
	}
	if len(p.Fields) != 4 {
		t.Fatalf("fields = %v", p.Fields)
	}

	list, _ := reg.ByID("list-posts")
	if list.HTTPMethod() != httpclient.MethodGet {
		t.Fatalf("default method = %q", list.Method)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	file := writeFile(t, "requests.json", `{"requests":[{"id":"a","url":"https://example.com"}]}`)
	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("a"); !ok {
		t.Fatalf("expected plan a")
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	tests := map[string]string{
		"duplicate": `
requests:
  - id: dup
    url: https://a.example
  - id: dup
    url: https://b.example
`,
		"missing url": `
requests:
  - id: a
`,
		"bad method": `
requests:
  - id: a
    method: delete
    url: https://a.example
`,
		"get with body": `
requests:
  - id: a
    url: https://a.example
    body: {x: 1}
`,
		"empty": `requests: []`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadRegistry(writeFile(t, "requests.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadRegistryReportsDecodeDetail(t *testing.T) {
	_, err := LoadRegistry(writeFile(t, "requests.yaml", "requests: 5\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("yaml err = %v, want line detail", err)
	}

	_, err = LoadRegistry(writeFile(t, "requests.json", `{"requests": [{"id": "a",}]}`))
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("json err = %v, want *json.SyntaxError", err)
	}

	if _, err := LoadRegistry(writeFile(t, "requests.txt", "requests: []")); err == nil || !strings.Contains(err.Error(), ".txt") {
		t.Fatalf("txt err = %v", err)
	}
}

func TestLoadRegistryKeepsInvalidURLForBuildTime(t *testing.T) {
	reg, err := NewRegistry([]Plan{{ID: "broken", URL: "not a url"}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if p, _ := reg.ByID("broken"); p.URL != "not a url" {
		t.Fatalf("url = %q", p.URL)
	}
}
