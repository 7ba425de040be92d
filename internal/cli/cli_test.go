package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newBackend serves the translation service and model registry endpoints.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["text"] == "Привет" && req["source_lang"] == "ru" && req["target_lang"] == "en" {
			json.NewEncoder(w).Encode(map[string]string{"translated_text": "Hello"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"translated_text": req["source_lang"] + ">" + req["target_lang"] + ":" + req["text"]})
	})
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{"summary": "short: " + req["text"]})
	})
	mux.HandleFunc("/scrape-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"content": "article body"})
	})
	mux.HandleFunc("/detect-language", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"detected_language": "DE"})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"llama3:8b","size":4661224676,"digest":"365c0bd3c000a25d"},{"name":"gemma:7b","size":5011052863,"digest":"a72c7f4d0a15"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig points every endpoint at baseURL and keeps files in a temp dir.
func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
[backend]
base_url = %q
timeout = "5s"

[registry]
base_url = %q

[prefs]
driver = "json"
path = %q

[log]
dir = %q

[notifications]
enabled = false
`, baseURL, baseURL, filepath.Join(dir, "prefs.json"), filepath.Join(dir, "logs"))

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTranslateCommand(t *testing.T) {
	cfg := writeConfig(t, newBackend(t).URL)

	out, err := run(t, "", "--config", cfg, "translate", "--from", "ru", "--to", "en", "Привет")
	if err != nil {
		t.Fatalf("translate error = %v", err)
	}
	if out != "Hello\n" {
		t.Fatalf("output = %q, want Hello", out)
	}
}

func TestTranslateCommandReadsStdinAndDetects(t *testing.T) {
	cfg := writeConfig(t, newBackend(t).URL)

	out, err := run(t, "Guten Tag\n", "--config", cfg, "translate", "--from", "auto")
	if err != nil {
		t.Fatalf("translate error = %v", err)
	}
	if out != "de>en:Guten Tag\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestTranslateCommandRejectsBlankInput(t *testing.T) {
	if _, err := run(t, "   ", "translate"); err == nil {
		t.Fatal("expected error for blank input")
	}
}

func TestTranslateCommandUnreachableBackend(t *testing.T) {
	srv := newBackend(t)
	cfg := writeConfig(t, srv.URL)
	srv.Close()

	_, err := run(t, "", "--config", cfg, "translate", "hello")
	if err == nil || !strings.Contains(err.Error(), "translate failed") {
		t.Fatalf("error = %v, want translate failure", err)
	}
}

func TestSummarizeCommand(t *testing.T) {
	cfg := writeConfig(t, newBackend(t).URL)

	out, err := run(t, "", "--config", cfg, "summarize", "long", "text")
	if err != nil {
		t.Fatalf("summarize error = %v", err)
	}
	if out != "short: long text\n" {
		t.Fatalf("output = %q", out)
	}

	out, err = run(t, "", "--config", cfg, "summarize", "--url", "https://example.com/a")
	if err != nil {
		t.Fatalf("summarize --url error = %v", err)
	}
	if out != "short: article body\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestSummarizeCommandInvalidURL(t *testing.T) {
	cfg := writeConfig(t, newBackend(t).URL)
	if _, err := run(t, "", "--config", cfg, "summarize", "--url", "not a url"); err == nil {
		t.Fatal("expected invalid url error")
	}
}

func TestModelsCommand(t *testing.T) {
	cfg := writeConfig(t, newBackend(t).URL)

	out, err := run(t, "", "--config", cfg, "models", "--select", "llama3:8b")
	if err != nil {
		t.Fatalf("models error = %v", err)
	}
	if !strings.Contains(out, "llama3:8b") || !strings.Contains(out, "4.7 GB") {
		t.Fatalf("output = %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "llama3:8b") && !strings.HasPrefix(line, "*") {
			t.Fatalf("selected model not marked: %q", line)
		}
	}

	out, err = run(t, "", "--config", cfg, "models")
	if err != nil {
		t.Fatalf("models error = %v", err)
	}
	if !strings.Contains(out, "*  llama3:8b") {
		t.Fatalf("saved selection not restored: %q", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	srv := newBackend(t)
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "", "--config", cfg, "doctor")
	if err != nil {
		t.Fatalf("doctor error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ Translation service") {
		t.Fatalf("output = %q", out)
	}

	srv.Close()
	out, err = run(t, "", "--config", cfg, "doctor")
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("doctor error = %v, want %v", err, errChecksFailed)
	}
	if !strings.Contains(out, "✗ Translation service") {
		t.Fatalf("output = %q", out)
	}
}
